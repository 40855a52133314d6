package main

import (
	"os"

	"github.com/spf13/cobra"

	"tacc/internal/buildpipeline"
	"tacc/internal/diagfmt"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg [flags] file.tac",
	Short: "Build the control flow graph of a program",
	Long: `Cfg splits the three-address code into basic blocks with the leader method
and prints the blocks, their edges and levels. --dot emits Graphviz instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runCFG,
}

func init() {
	cfgCmd.Flags().Bool("dot", false, "print the graph in Graphviz dot syntax")
}

func runCFG(cmd *cobra.Command, args []string) error {
	dot, err := cmd.Flags().GetBool("dot")
	if err != nil {
		return err
	}
	s, res, err := compileForCommand(cmd, args[0], buildpipeline.StageCFG)
	if err != nil {
		return err
	}
	if !reached(res, buildpipeline.StageCFG) {
		return finish(s, res)
	}

	switch {
	case dot:
		err = res.CFG.WriteDOT(os.Stdout)
	case s.format == "json":
		err = diagfmt.WriteJSON(os.Stdout, res.CFG)
	default:
		section(s, os.Stdout, "Control Flow Graph")
		diagfmt.FormatCFGPretty(os.Stdout, res.CFG)
	}
	if err != nil {
		return err
	}
	return finish(s, res)
}
