package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tacc/internal/diagfmt"
	"tacc/internal/driver"
	"tacc/internal/examples"
)

var examplesCmd = &cobra.Command{
	Use:   "examples [name]",
	Short: "List the built-in example programs or compile one of them",
	Long: `Without arguments examples prints every built-in program. With a name
(calculator, conditional, loop, function) it compiles and runs that program
and prints every stage, like build does for a file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExamples,
}

func init() {
	examplesCmd.Flags().Int("registers", 8, "number of physical registers")
}

func runExamples(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, ".")
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return listExamples(s)
	}

	ex, err := examples.Get(args[0])
	if err != nil {
		return err
	}
	opts := s.driverOptions()
	opts.Run = true
	var out bytes.Buffer
	opts.RunOut = &out

	res, err := driver.CompileSource(cmd.Context(), ex.FileName(), ex.Source, opts)
	if err != nil {
		return fmt.Errorf("example %s failed: %w", ex.Name, err)
	}
	if s.format == "json" {
		if err := diagfmt.WriteJSON(os.Stdout, newBuildPayload(ex.FileName(), res, res.Bag, res.FileSet, out.String())); err != nil {
			return err
		}
		return finish(s, res)
	}
	if err := printDiagnostics(s, res.Bag, res.FileSet); err != nil {
		return err
	}
	writeBuildPretty(s, os.Stdout, res, out.String())
	return finish(s, res)
}

func listExamples(s *settings) error {
	all := examples.All()
	if s.format == "json" {
		return diagfmt.WriteJSON(os.Stdout, all)
	}
	section(s, os.Stdout, "Example Programs")
	for i, ex := range all {
		fmt.Fprintf(os.Stdout, "\n%d. %s (%s):\n", i+1, ex.Title, ex.Name)
		fmt.Fprintln(os.Stdout, "```")
		fmt.Fprintln(os.Stdout, strings.TrimRight(ex.Source, "\n"))
		fmt.Fprintln(os.Stdout, "```")
	}
	return nil
}
