// Package examples ships the sample programs behind `tacc examples`.
package examples

import (
	"embed"
	"fmt"
)

//go:embed *.tac
var files embed.FS

// Example is one built-in program.
type Example struct {
	Name   string
	Title  string
	Source string
}

// FileName is the name the example compiles under.
func (e Example) FileName() string { return e.Name + ".tac" }

// порядок как в справке REPL
var catalog = []struct{ name, title string }{
	{"calculator", "Simple Calculator"},
	{"conditional", "Conditional Logic"},
	{"loop", "Loop Example"},
	{"function", "Function Definition"},
}

// All returns every example in display order.
func All() []Example {
	out := make([]Example, 0, len(catalog))
	for _, c := range catalog {
		ex, err := load(c.name, c.title)
		if err != nil {
			// embedded at build time, a missing file is a packaging bug
			panic(err)
		}
		out = append(out, ex)
	}
	return out
}

// Get looks an example up by name.
func Get(name string) (Example, error) {
	for _, c := range catalog {
		if c.name == name {
			return load(c.name, c.title)
		}
	}
	return Example{}, fmt.Errorf("unknown example %q (have %s)", name, Names())
}

// Names lists the example names, comma separated.
func Names() string {
	var s string
	for i, c := range catalog {
		if i > 0 {
			s += ", "
		}
		s += c.name
	}
	return s
}

func load(name, title string) (Example, error) {
	data, err := files.ReadFile(name + ".tac")
	if err != nil {
		return Example{}, err
	}
	return Example{Name: name, Title: title, Source: string(data)}, nil
}
