package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tacc/internal/diag"
	"tacc/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, &d, fs, opts, p)
	}
}

type palette struct {
	err, warn, info, code, path, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan),
		code:   mk(color.Bold),
		path:   mk(color.FgWhite, color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
		note:   mk(color.FgCyan, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	// Diagnostics without a file have nothing to point at. Timing entries
	// carry a JSON note that is only useful to the json formatter.
	if fs == nil || int(d.Primary.File) >= fs.Len() || d.Code == diag.ObsTimings {
		fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity).Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
		return
	}
	f := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d", f.FormatPath(opts.PathMode.String(), fs.BaseDir()), start.Line, start.Col),
		p.severity(d.Severity).Sprint(d.Severity),
		p.code.Sprint(d.Code.ID()),
		d.Message,
	)
	writeSnippet(w, f, start, end, int(opts.Context), p)

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := fs.Get(n.Span.File)
		ns, _ := fs.Resolve(n.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
			nf.FormatPath(opts.PathMode.String(), fs.BaseDir()), ns.Line, ns.Col, n.Msg)
	}
}

// writeSnippet prints the primary line (plus context lines) with a caret
// run under the span. Columns are display columns, so wide runes in
// string literals keep the carets aligned.
func writeSnippet(w io.Writer, f *source.File, start, end source.LineCol, context int, p palette) {
	if start.Line == 0 {
		return
	}
	from := int(start.Line) - context
	if from < 1 {
		from = 1
	}
	gutterWidth := len(fmt.Sprint(int(start.Line) + context))

	for ln := from; ln <= int(start.Line)+context; ln++ {
		// #nosec G115 -- ln is bounded by start.Line+context
		text := f.GetLine(uint32(ln))
		if ln > int(start.Line) && text == "" {
			break
		}
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), text)
		if ln != int(start.Line) {
			continue
		}
		line := text
		col := min(int(start.Col)-1, len(line))
		endCol := len(line)
		if end.Line == start.Line {
			endCol = min(int(end.Col)-1, len(line))
		}
		pad := runewidth.StringWidth(line[:col])
		width := max(runewidth.StringWidth(line[col:max(col, endCol)]), 1)
		marks := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), p.caret.Sprint(marks))
	}
}
