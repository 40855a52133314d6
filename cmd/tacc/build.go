package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tacc/internal/buildpipeline"
	"tacc/internal/cfg"
	"tacc/internal/cpu"
	"tacc/internal/diag"
	"tacc/internal/diagfmt"
	"tacc/internal/driver"
	"tacc/internal/observ"
	"tacc/internal/regalloc"
	"tacc/internal/source"
	"tacc/internal/symtab"
	"tacc/internal/tac"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] <file.tac|directory>",
	Short: "Run the whole pipeline and print every stage",
	Long: `Build compiles a program through every stage and prints the symbol table,
three-address code, control flow graph, register allocation and CPU code.
A directory compiles every *.tac file below it in parallel, reusing cached
artifacts for unchanged files.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Int("registers", 8, "number of physical registers")
	buildCmd.Flags().Bool("run", false, "execute the program after compiling")
	buildCmd.Flags().Int("jobs", 0, "max parallel workers for directory builds (0=auto)")
	buildCmd.Flags().Bool("no-cache", false, "neither read nor write the artifact cache")
	buildCmd.Flags().Bool("clean-cache", false, "drop every cached artifact before building")
	buildCmd.Flags().String("ui", "auto", "progress UI for directory builds (auto|on|off)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	target := args[0]

	run, err := cmd.Flags().GetBool("run")
	if err != nil {
		return err
	}
	cleanCache, err := cmd.Flags().GetBool("clean-cache")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	s, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}
	if cleanCache {
		if err := dropCache(s); err != nil {
			return err
		}
	}

	opts := s.driverOptions()
	opts.Run = run
	if opts.Cache, err = s.openCache(); err != nil {
		return err
	}

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if st.IsDir() {
		return buildDir(cmd, s, target, opts, mode)
	}
	return buildFile(cmd, s, target, opts)
}

func dropCache(s *settings) error {
	cache, err := driver.OpenDiskCache("tacc")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}
	if !s.quiet {
		fmt.Fprintf(os.Stderr, "removed %s\n", cache.Dir())
	}
	return nil
}

func buildFile(cmd *cobra.Command, s *settings, path string, opts driver.Options) error {
	var out bytes.Buffer
	if opts.Run {
		opts.RunOut = &out
	}
	res, err := driver.CompileFile(cmd.Context(), path, opts)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if s.format == "json" {
		if err := diagfmt.WriteJSON(os.Stdout, newBuildPayload(res.File.Path, res, res.Bag, res.FileSet, out.String())); err != nil {
			return err
		}
		return finish(s, res)
	}
	if err := printDiagnostics(s, res.Bag, res.FileSet); err != nil {
		return err
	}
	writeBuildPretty(s, os.Stdout, res, out.String())
	return finish(s, res)
}

func buildDir(cmd *cobra.Command, s *settings, dir string, opts driver.Options, mode uiMode) error {
	files, err := driver.ListSourceFiles(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	display := make([]string, len(files))
	for i, f := range files {
		display[i] = buildpipeline.DisplayPath(f, dir)
	}

	var (
		fs       *source.FileSet
		results  []driver.DirResult
		recorder *buildpipeline.RecordingSink
	)
	jobs := s.config.Build.Jobs
	if shouldUseTUI(mode, s.format) && len(files) > 0 {
		fs, results, err = runCompileDirWithUI(cmd.Context(), "tacc build", dir, display, opts, jobs)
	} else {
		recorder = &buildpipeline.RecordingSink{}
		opts.Progress = recorder
		fs, results, err = driver.CompileDir(cmd.Context(), dir, opts, jobs)
	}
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if s.format == "json" {
		payloads := make([]buildPayload, 0, len(results))
		for _, r := range results {
			payloads = append(payloads, newBuildPayload(r.Path, r.Result, r.Bag, fs, r.Output))
		}
		if err := diagfmt.WriteJSON(os.Stdout, payloads); err != nil {
			return err
		}
		return dirStatus(results)
	}

	for idx, r := range results {
		if !s.quiet {
			if idx > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "== %s ==\n", r.Path)
		}
		if r.Result == nil {
			// файл не загрузился: позиции в диагностике нет
			if err := printDiagnostics(s, r.Bag, nil); err != nil {
				return err
			}
			continue
		}
		if err := printDiagnostics(s, r.Bag, fs); err != nil {
			return err
		}
		writeBuildPretty(s, os.Stdout, r.Result, r.Output)
		if s.timings {
			printStageTimings(os.Stdout, r.Result.Timings, r.Result.Cached)
		}
	}
	if recorder != nil && !s.quiet {
		printBuildSummary(os.Stdout, display, recorder.Final())
	}
	return dirStatus(results)
}

func dirStatus(results []driver.DirResult) error {
	for _, r := range results {
		if r.Bag != nil && r.Bag.HasErrors() {
			return errDiagnostics
		}
	}
	return nil
}

// printBuildSummary is the --ui=off stand-in for the progress view.
func printBuildSummary(w io.Writer, files []string, final map[string]buildpipeline.Event) {
	if len(files) == 0 {
		fmt.Fprintln(w, "no source files found")
		return
	}
	fmt.Fprintln(w)
	counts := map[buildpipeline.Status]int{}
	for _, f := range files {
		ev, ok := final[f]
		if !ok {
			continue
		}
		counts[ev.Status]++
		fmt.Fprintf(w, "%8s  %s  %s\n", ev.Status, f, ev.Elapsed.Round(time.Microsecond))
	}
	fmt.Fprintf(w, "%d files: %d done, %d cached, %d failed\n", len(files),
		counts[buildpipeline.StatusDone], counts[buildpipeline.StatusCached], counts[buildpipeline.StatusError])
}

// writeBuildPretty prints every stage the pipeline reached, in order.
func writeBuildPretty(s *settings, w io.Writer, res *driver.Result, output string) {
	if !s.quiet {
		section(s, w, "Compiling Program")
		content := string(res.File.Content)
		fmt.Fprint(w, content)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			fmt.Fprintln(w)
		}
	}

	if reached(res, buildpipeline.StageTAC) {
		section(s, w, "Symbol Table")
		diagfmt.FormatSymbolsPretty(w, res.Symbols)
		section(s, w, "Three-Address Code")
		if err := diagfmt.FormatTACPretty(w, res.TAC); err != nil {
			fmt.Fprintf(w, "  <%v>\n", err)
		}
	}
	if reached(res, buildpipeline.StageCFG) {
		section(s, w, "Control Flow Graph")
		diagfmt.FormatCFGPretty(w, res.CFG)
	}
	if reached(res, buildpipeline.StageRegalloc) {
		section(s, w, "Register Allocation")
		diagfmt.FormatAllocationPretty(w, *res.Alloc, false)
	}
	if reached(res, buildpipeline.StageCPU) {
		section(s, w, "CPU Code (Assembly-like)")
		if err := diagfmt.FormatCPUPretty(w, res.CPU); err != nil {
			fmt.Fprintf(w, "  <%v>\n", err)
		}
	}
	if res.RunStats != nil {
		section(s, w, "Program Output")
		fmt.Fprint(w, output)
	}

	if s.quiet {
		return
	}
	switch {
	case res.Bag.HasErrors():
		fmt.Fprintln(w, "\ncompilation failed")
	case res.Cached:
		fmt.Fprintln(w, "\ncompilation complete (cached)")
	default:
		fmt.Fprintln(w, "\ncompilation complete")
	}
}

type buildPayload struct {
	File         string                    `json:"file"`
	Reached      string                    `json:"reached,omitempty"`
	Cached       bool                      `json:"cached"`
	Symbols      []symtab.Symbol           `json:"symbols,omitempty"`
	Instructions []tac.Instr               `json:"threeAddressCode,omitempty"`
	CFG          *cfg.Graph                `json:"controlFlowGraph,omitempty"`
	Alloc        *regalloc.Allocation      `json:"registerAllocation,omitempty"`
	CPU          []cpu.Instr               `json:"cpuCode,omitempty"`
	Output       string                    `json:"output,omitempty"`
	Timings      *observ.Report            `json:"timings,omitempty"`
	Diagnostics  diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

// newBuildPayload accepts a nil res for files that failed to load.
func newBuildPayload(path string, res *driver.Result, bag *diag.Bag, fs *source.FileSet, output string) buildPayload {
	p := buildPayload{File: path, Output: output}
	if bag != nil {
		p.Diagnostics = diagfmt.BuildDiagnosticsOutput(bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		})
	}
	if res == nil {
		return p
	}
	p.Reached = string(res.Reached)
	p.Cached = res.Cached
	p.Symbols = res.Symbols
	p.Instructions = res.TAC.Instrs
	p.CFG = res.CFG
	p.Alloc = res.Alloc
	p.CPU = res.CPU
	p.Timings = res.Timing
	return p
}
