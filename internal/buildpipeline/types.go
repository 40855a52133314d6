// Package buildpipeline carries progress events from the driver to
// whoever renders them (the TUI or plain log lines).
package buildpipeline

import "time"

// Stage names one step of the compile pipeline.
type Stage string

const (
	StageLex      Stage = "lex"
	StageParse    Stage = "parse"
	StageTAC      Stage = "tac"
	StageCFG      Stage = "cfg"
	StageRegalloc Stage = "regalloc"
	StageCPU      Stage = "cpu"
	StageRun      Stage = "run"
	// StageCache covers the disk cache lookup before any real work.
	StageCache Stage = "cache"
)

// Stages lists the compile stages in pipeline order; run is optional
// and comes last.
var Stages = []Stage{StageLex, StageParse, StageTAC, StageCFG, StageRegalloc, StageCPU, StageRun}

// Fraction reports how far along the pipeline a stage is, in (0, 1).
func (s Stage) Fraction() float64 {
	for i, st := range Stages {
		if st == s {
			return float64(i+1) / float64(len(Stages)+1)
		}
	}
	return 0
}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusCached  Status = "cached"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Terminal reports whether no further events follow for the file.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError || s == StatusCached
}

// Event reports progress for a file (or for the whole build when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Sinks are called from worker
// goroutines and must be goroutine-safe.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds per-stage durations for one file.
type Timings struct {
	stages map[Stage]time.Duration
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages; with no
// arguments it sums every recorded stage.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if len(stages) == 0 {
		stages = Stages
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
