package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tacc/internal/trace"
)

var (
	activeTracer    trace.Tracer = trace.Nop
	activeHeartbeat *trace.Heartbeat
)

// startInstrumentation is the root PersistentPreRunE: every command runs
// with the configured tracer in its context and the requested profilers on.
func startInstrumentation(cmd *cobra.Command, _ []string) error {
	tracer, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	activeTracer = tracer
	return setupProfiling(cmd)
}

// setupTracing inspects trace-related flags and initializes the tracer.
func setupTracing(cmd *cobra.Command) (trace.Tracer, error) {
	root := cmd.Root()

	// Read trace configuration from flags
	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}

	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}

	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}

	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// --trace без уровня включает фазы
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return trace.Nop, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	if heartbeatInterval > 0 {
		activeHeartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}
	return tracer, nil
}

// dumpTraceRing prints the in-memory events after a failed command.
func dumpTraceRing(w io.Writer) {
	ring, ok := trace.RingOf(activeTracer)
	if !ok || ring.Len() == 0 {
		return
	}
	fmt.Fprintf(w, "trace: last %d events\n", ring.Len())
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}

// closeInstrumentation flushes the tracer and writes the profiles.
func closeInstrumentation(w io.Writer) {
	stopProfiling(w)
	// Stop heartbeat first
	if activeHeartbeat != nil {
		activeHeartbeat.Stop()
		activeHeartbeat = nil
	}
	if err := activeTracer.Flush(); err != nil {
		fmt.Fprintf(w, "trace: flush error: %v\n", err)
	}
	if err := activeTracer.Close(); err != nil {
		fmt.Fprintf(w, "trace: close error: %v\n", err)
	}
	activeTracer = trace.Nop
}
