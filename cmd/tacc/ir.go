package main

import (
	"os"

	"github.com/spf13/cobra"

	"tacc/internal/buildpipeline"
	"tacc/internal/diagfmt"
	"tacc/internal/symtab"
	"tacc/internal/tac"
)

var irCmd = &cobra.Command{
	Use:   "ir [flags] file.tac",
	Short: "Print the symbol table and three-address code",
	Args:  cobra.ExactArgs(1),
	RunE:  runIR,
}

type irPayload struct {
	Symbols      []symtab.Symbol `json:"symbols"`
	Instructions []tac.Instr     `json:"instructions"`
}

func runIR(cmd *cobra.Command, args []string) error {
	s, res, err := compileForCommand(cmd, args[0], buildpipeline.StageTAC)
	if err != nil {
		return err
	}
	if !reached(res, buildpipeline.StageTAC) {
		return finish(s, res)
	}

	if s.format == "json" {
		if err := diagfmt.WriteJSON(os.Stdout, irPayload{Symbols: res.Symbols, Instructions: res.TAC.Instrs}); err != nil {
			return err
		}
		return finish(s, res)
	}

	section(s, os.Stdout, "Symbol Table")
	diagfmt.FormatSymbolsPretty(os.Stdout, res.Symbols)
	section(s, os.Stdout, "Three-Address Code")
	if err := diagfmt.FormatTACPretty(os.Stdout, res.TAC); err != nil {
		return err
	}
	return finish(s, res)
}
