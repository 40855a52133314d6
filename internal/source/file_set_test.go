package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"tacc/internal/source"
)

func TestFileSetResolve(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.tac", []byte("let x = 1\nprint x\n"))

	tests := []struct {
		name string
		off  uint32
		want source.LineCol
	}{
		{"first byte", 0, source.LineCol{Line: 1, Col: 1}},
		{"end of first line", 9, source.LineCol{Line: 1, Col: 10}},
		{"start of second line", 10, source.LineCol{Line: 2, Col: 1}},
		{"inside second line", 16, source.LineCol{Line: 2, Col: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(source.Span{File: id, Start: tt.off, End: tt.off})
			if start != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, start)
			}
		})
	}
}

func TestFileSetNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.tac")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFlet a = 1\r\nprint a\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "let a = 1\nprint a\n" {
		t.Errorf("unexpected content %q", f.Content)
	}
	if f.Flags&source.FileHadBOM == 0 || f.Flags&source.FileNormalizedCRLF == 0 {
		t.Errorf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if got := f.GetLine(2); got != "print a" {
		t.Errorf("expected line 2 %q, got %q", "print a", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Errorf("expected empty line for out-of-range, got %q", got)
	}
}

func TestSpanCover(t *testing.T) {
	a := source.Span{File: 1, Start: 4, End: 8}
	b := source.Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got.Start != 2 || got.End != 8 {
		t.Errorf("expected 2..8, got %s", got)
	}
	other := source.Span{File: 2, Start: 0, End: 20}
	if got := a.Cover(other); got != a {
		t.Errorf("spans from another file must not merge, got %s", got)
	}
}

func TestFormatPath(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/project/src/loop.tac", []byte("print 1\n"))
	f := fs.Get(id)

	cases := []struct {
		mode, base, want string
	}{
		{"basename", "", "loop.tac"},
		{"relative", "/home/user/project", "src/loop.tac"},
		{"relative", "/elsewhere", "/home/user/project/src/loop.tac"},
		{"auto", "", "/home/user/project/src/loop.tac"},
	}
	for _, tc := range cases {
		if got := f.FormatPath(tc.mode, tc.base); got != tc.want {
			t.Errorf("FormatPath(%q, %q) = %q, want %q", tc.mode, tc.base, got, tc.want)
		}
	}
}
