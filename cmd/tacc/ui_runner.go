package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tacc/internal/buildpipeline"
	"tacc/internal/driver"
	"tacc/internal/regalloc"
	"tacc/internal/source"
	"tacc/internal/ui"
)

type dirOutcome struct {
	fs      *source.FileSet
	results []driver.DirResult
	err     error
}

// runCompileDirWithUI compiles dir in the background while the progress
// model renders its events.
func runCompileDirWithUI(ctx context.Context, title, dir string, files []string, opts driver.Options, jobs int) (*source.FileSet, []driver.DirResult, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		fs, results, err := driver.CompileDir(ctx, dir, optsCopy, jobs)
		outcomeCh <- dirOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// после ctrl+c модель больше не читает канал
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}

// runStepViewer opens the interactive coloring replay.
func runStepViewer(alloc *regalloc.Allocation) error {
	program := tea.NewProgram(ui.NewStepModel(alloc), tea.WithOutput(os.Stdout), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
