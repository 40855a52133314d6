package driver

import (
	"context"

	"tacc/internal/buildpipeline"
)

// Parse lexes and parses the file at path. Result.Builder holds whatever
// the parser recovered; it stays nil when lexing already failed.
func Parse(ctx context.Context, path string, maxDiagnostics int) (*Result, error) {
	return CompileFile(ctx, path, Options{
		MaxDiagnostics: maxDiagnostics,
		Until:          buildpipeline.StageParse,
	})
}
