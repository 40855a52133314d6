package diag

import (
	"testing"

	"tacc/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("examples/sample.tac", []byte("a\nb\n"))

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     CfgDanglingJump,
			Message:  "jump to undefined label L9",
			Primary:  source.Span{File: file, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: file, Start: 2, End: 3}, Msg: "note line"},
			},
		},
	}

	expected := "error SYN2001 examples/sample.tac:1:1 first line second\n" +
		"note SYN2001 examples/sample.tac:2:1 note line\n" +
		"warning CFG4001 examples/sample.tac:2:1 jump to undefined label L9"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortDiagnosticsTieBreaks(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("tie.tac", []byte("let a = 1\n"))
	at := source.Span{File: file, Start: 4, End: 5}

	diags := []Diagnostic{
		{Severity: SevWarning, Code: CfgDanglingJump, Message: "b", Primary: at},
		{Severity: SevWarning, Code: CfgDanglingJump, Message: "a", Primary: at},
		{Severity: SevError, Code: SynUnexpectedToken, Message: "z", Primary: at},
		{Severity: SevError, Code: LexUnknownChar, Message: "z", Primary: at},
	}

	expected := "error LEX1001 tie.tac:1:5 z\n" +
		"error SYN2001 tie.tac:1:5 z\n" +
		"warning CFG4001 tie.tac:1:5 a\n" +
		"warning CFG4001 tie.tac:1:5 b"

	if got := FormatShortDiagnostics(diags, fs, false); got != expected {
		t.Fatalf("unexpected order:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagLimitAndDedup(t *testing.T) {
	b := NewBag(2)
	d := NewError(LexUnknownChar, source.Span{Start: 1, End: 2}, "unknown character '#'")
	if !b.Add(d) || !b.Add(d) {
		t.Fatal("expected both adds to succeed under the limit")
	}
	if b.Add(d) {
		t.Fatal("expected third add to hit the limit")
	}
	b.Dedup()
	if b.Len() != 1 {
		t.Fatalf("expected 1 diagnostic after dedup, got %d", b.Len())
	}
	if !b.HasErrors() || b.HasWarnings() {
		t.Fatal("expected errors only")
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		LexUnknownChar:    "LEX1001",
		GenMalformedNode:  "GEN3003",
		CfgDanglingJump:   "CFG4001",
		AllocSpilled:      "ALC4101",
		RunDivisionByZero: "RUN5001",
		Code(42):          "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}
