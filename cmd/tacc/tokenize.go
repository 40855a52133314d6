package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tacc/internal/diagfmt"
	"tacc/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.tac",
	Short: "Tokenize a source file",
	Long:  `Tokenize breaks a source file into its tokens and prints them as a numbered table`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	s, err := loadSettings(cmd, filePath)
	if err != nil {
		return err
	}

	// Выполняем токенизацию
	result, err := driver.Tokenize(cmd.Context(), filePath, s.maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	if err := printDiagnostics(s, result.Bag, result.FileSet); err != nil {
		return err
	}

	// Выводим токены в выбранном формате
	switch s.format {
	case "json":
		err = diagfmt.FormatTokensJSON(os.Stdout, result.Tokens, result.FileSet)
	default:
		section(s, os.Stdout, "Tokens")
		err = diagfmt.FormatTokensPretty(os.Stdout, result.Tokens)
	}
	if err != nil {
		return err
	}
	return finish(s, result)
}
