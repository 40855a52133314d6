package driver

import (
	"context"

	"tacc/internal/buildpipeline"
)

// Tokenize runs only the lexer over the file at path.
func Tokenize(ctx context.Context, path string, maxDiagnostics int) (*Result, error) {
	return CompileFile(ctx, path, Options{
		MaxDiagnostics: maxDiagnostics,
		Until:          buildpipeline.StageLex,
	})
}
