package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tacc/internal/prof"
)

var activeProfile *prof.Session

// setupProfiling inspects persistent profiling flags and enables the
// corresponding profilers.
func setupProfiling(cmd *cobra.Command) error {
	root := cmd.Root()

	cpuProfile, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := root.PersistentFlags().GetString("runtime-trace")
	if err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	cfg := prof.Config{CPUProfile: cpuProfile, MemProfile: memProfile, RuntimeTrace: tracePath}
	if !cfg.Enabled() {
		return nil
	}
	session, err := prof.Start(cfg)
	if err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	activeProfile = session
	return nil
}

func stopProfiling(w io.Writer) {
	if err := activeProfile.Stop(); err != nil {
		fmt.Fprintf(w, "failed to write profiles: %v\n", err)
	}
	activeProfile = nil
}
