package fuzztests

import (
	"testing"

	"tacc/internal/examples"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB: ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

// edgeSeeds are inputs that once tripped error recovery or the generator.
var edgeSeeds = []string{
	"",
	"let",
	"let x = ",
	"print (1 + 2",
	"while (x) { print x",
	"if (a) { } else { }",
	"function f() { function g() { return 1 } return g() }",
	"let s = \"unterminated",
	"}}}{{{",
	"let x = 1; x = x / 0; print x",
	"function r(n) { return r(n) }\nr(1)",
	"let a = 1 let b = 2 print a + b",
}

func addCorpusSeeds(f *testing.F) {
	for _, ex := range examples.All() {
		f.Add(clampSeed([]byte(ex.Source)))
	}
	for _, s := range edgeSeeds {
		f.Add([]byte(s))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
