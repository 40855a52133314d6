package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"tacc/internal/buildpipeline"
	"tacc/internal/diag"
	"tacc/internal/diagfmt"
	"tacc/internal/driver"
	"tacc/internal/source"
)

// printDiagnostics writes bag to stderr in the selected format.
func printDiagnostics(s *settings, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	if s.format == "json" {
		return diagfmt.JSON(os.Stderr, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		})
	}
	diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{
		Color:     s.colorErr,
		Context:   2,
		ShowNotes: true,
	})
	return nil
}

// compileForCommand compiles path up to until with the merged settings and
// prints the diagnostics. The result is nil only together with an error.
func compileForCommand(cmd *cobra.Command, path string, until buildpipeline.Stage) (*settings, *driver.Result, error) {
	s, err := loadSettings(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	opts := s.driverOptions()
	opts.Until = until
	res, err := driver.CompileFile(cmd.Context(), path, opts)
	if err != nil {
		return s, nil, fmt.Errorf("compilation failed: %w", err)
	}
	if err := printDiagnostics(s, res.Bag, res.FileSet); err != nil {
		return s, nil, err
	}
	return s, res, nil
}

// reached reports whether the pipeline got through stage; otherwise the
// command prints nothing more than the diagnostics.
func reached(res *driver.Result, stage buildpipeline.Stage) bool {
	want := slices.Index(buildpipeline.Stages, stage)
	return want >= 0 && slices.Index(buildpipeline.Stages, res.Reached) >= want
}

// finish turns error diagnostics into the exit status.
func finish(s *settings, res *driver.Result) error {
	if s.timings && s.format != "json" {
		printStageTimings(os.Stdout, res.Timings, res.Cached)
	}
	if res.Bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func section(s *settings, w io.Writer, title string) {
	if s.quiet {
		return
	}
	diagfmt.Section(w, title, s.colorOut)
}

var stageVerbs = map[buildpipeline.Stage]string{
	buildpipeline.StageLex:      "lexed",
	buildpipeline.StageParse:    "parsed",
	buildpipeline.StageTAC:      "lowered",
	buildpipeline.StageCFG:      "cfg built",
	buildpipeline.StageRegalloc: "allocated",
	buildpipeline.StageCPU:      "emitted",
	buildpipeline.StageRun:      "ran",
}

func printStageTimings(out io.Writer, timings buildpipeline.Timings, cached bool) {
	if out == nil {
		return
	}
	if cached && timings.Has(buildpipeline.StageCache) {
		fmt.Fprintf(out, "cache hit %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageCache)))
	}
	for _, stage := range buildpipeline.Stages {
		if timings.Has(stage) {
			fmt.Fprintf(out, "%s %.1f ms\n", stageVerbs[stage], toMillis(timings.Duration(stage)))
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
