package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tacc/internal/buildpipeline"
	"tacc/internal/diagfmt"
	"tacc/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.tac",
	Short: "Parse a source file and print its syntax tree",
	Long:  `Parse analyzes a source file and outputs its syntax tree as an outline, a box tree or JSON`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|tree|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	s, err := loadSettings(cmd, filePath, "tree")
	if err != nil {
		return err
	}

	result, err := driver.Parse(cmd.Context(), filePath, s.maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	if err := printDiagnostics(s, result.Bag, result.FileSet); err != nil {
		return err
	}
	// дерево печатаем только если парсер дошёл до конца
	if !reached(result, buildpipeline.StageParse) {
		return finish(s, result)
	}

	switch s.format {
	case "json":
		err = diagfmt.FormatASTJSON(os.Stdout, result.Builder)
	case "tree":
		err = diagfmt.FormatASTTree(os.Stdout, result.Builder, result.FileSet)
	default:
		section(s, os.Stdout, "Parsing")
		err = diagfmt.FormatASTPretty(os.Stdout, result.Builder, result.FileSet)
	}
	if err != nil {
		return err
	}
	return finish(s, result)
}
