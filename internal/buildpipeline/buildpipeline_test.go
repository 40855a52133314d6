package buildpipeline

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNormalizeProgressFiles(t *testing.T) {
	files := []string{"/proj/b.tac", "/proj/sub/a.tac", "/proj/b.tac", "", "/other/c.tac"}
	got := NormalizeProgressFiles(files, "/proj")
	want := []string{"/other/c.tac", "b.tac", "sub/a.tac"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRecordingSinkFinal(t *testing.T) {
	var rec RecordingSink
	EmitQueued(&rec, []string{"a.tac", "b.tac"})
	EmitStage(&rec, "a.tac", StageLex, StatusWorking, nil, 0)
	EmitStage(&rec, "a.tac", StageCPU, StatusDone, nil, time.Millisecond)
	EmitStage(&rec, "b.tac", StageParse, StatusError, errors.New("boom"), 0)

	final := rec.Final()
	if len(final) != 2 {
		t.Fatalf("expected 2 finished files, got %v", final)
	}
	if final["a.tac"].Status != StatusDone || final["b.tac"].Err == nil {
		t.Fatalf("unexpected final events %+v", final)
	}
	if len(rec.Events()) != 5 {
		t.Fatalf("expected 5 events, got %d", len(rec.Events()))
	}
}

func TestStageFractionIncreases(t *testing.T) {
	prev := 0.0
	for _, st := range Stages {
		f := st.Fraction()
		if f <= prev || f >= 1 {
			t.Fatalf("%s fraction %v not in (%v, 1)", st, f, prev)
		}
		prev = f
	}
	if StageCache.Fraction() != 0 {
		t.Fatal("cache is not a pipeline stage")
	}
}

func TestTimingsSum(t *testing.T) {
	var tm Timings
	tm.Set(StageLex, time.Millisecond)
	tm.Set(StageCPU, 2*time.Millisecond)
	if !tm.Has(StageLex) || tm.Has(StageRun) {
		t.Fatal("Has mismatch")
	}
	if tm.Sum() != 3*time.Millisecond || tm.Sum(StageCPU) != 2*time.Millisecond {
		t.Fatalf("unexpected sums %v %v", tm.Sum(), tm.Sum(StageCPU))
	}
}
