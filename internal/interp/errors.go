package interp

import (
	"fmt"
	"strings"

	"tacc/internal/diag"
	"tacc/internal/source"
)

// ErrorCode identifies a runtime failure.
type ErrorCode int

// Stable codes - do not change values.
const (
	ErrDivisionByZero    ErrorCode = 1001 // RT1001
	ErrUndefinedVariable ErrorCode = 1002 // RT1002
	ErrUndefinedFunction ErrorCode = 1003 // RT1003
	ErrArity             ErrorCode = 1004 // RT1004
	ErrTypeMismatch      ErrorCode = 1005 // RT1005
	ErrStepLimit         ErrorCode = 1006 // RT1006
	ErrStackOverflow     ErrorCode = 1007 // RT1007
	ErrCancelled         ErrorCode = 1008 // RT1008
	ErrMalformed         ErrorCode = 1999 // RT1999: tree shape the interpreter does not know
)

func (c ErrorCode) String() string {
	return fmt.Sprintf("RT%d", c)
}

var diagCodes = map[ErrorCode]diag.Code{
	ErrDivisionByZero:    diag.RunDivisionByZero,
	ErrUndefinedVariable: diag.RunUndefinedVariable,
	ErrUndefinedFunction: diag.RunUndefinedFunction,
	ErrArity:             diag.RunArity,
	ErrTypeMismatch:      diag.RunTypeMismatch,
	ErrStepLimit:         diag.RunStepLimit,
	ErrStackOverflow:     diag.RunStackOverflow,
	ErrCancelled:         diag.RunCancelled,
}

// DiagCode maps the runtime code onto the diagnostic code space.
func (c ErrorCode) DiagCode() diag.Code {
	if d, ok := diagCodes[c]; ok {
		return d
	}
	return diag.UnknownCode
}

// Frame is one active call, innermost first in a backtrace.
type Frame struct {
	Func string
	Span source.Span
}

// RuntimeError stops execution. Output produced before it stays written.
type RuntimeError struct {
	Code      ErrorCode
	Message   string
	Span      source.Span
	Backtrace []Frame
	Err       error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error %s: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// FormatWithFiles renders the error with resolved positions.
func (e *RuntimeError) FormatWithFiles(files *source.FileSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "runtime error %s: %s\n", e.Code, e.Message)
	sb.WriteString("at ")
	sb.WriteString(formatSpan(e.Span, files))
	sb.WriteString("\n")
	if len(e.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, f := range e.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s at %s\n", i, f.Func, formatSpan(f.Span, files))
		}
	}
	return sb.String()
}

func formatSpan(span source.Span, files *source.FileSet) string {
	if files == nil || (span.Start == 0 && span.End == 0) {
		return "<no-span>"
	}
	file := files.Get(span.File)
	if file == nil {
		return "<no-span>"
	}
	start, _ := files.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.Path, start.Line, start.Col)
}
