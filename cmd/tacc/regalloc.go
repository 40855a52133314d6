package main

import (
	"os"

	"github.com/spf13/cobra"

	"tacc/internal/buildpipeline"
	"tacc/internal/diagfmt"
)

var regallocCmd = &cobra.Command{
	Use:   "regalloc [flags] file.tac",
	Short: "Allocate registers by coloring the interference graph",
	Long: `Regalloc computes live ranges, builds the interference graph and colors it
with a fixed number of registers. Variables that get no color are spilled.
--step replays the coloring one decision at a time.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegalloc,
}

func init() {
	regallocCmd.Flags().Int("registers", 8, "number of physical registers")
	regallocCmd.Flags().Bool("steps", false, "print the coloring log")
	regallocCmd.Flags().Bool("step", false, "open the interactive step viewer")
}

func runRegalloc(cmd *cobra.Command, args []string) error {
	showSteps, err := cmd.Flags().GetBool("steps")
	if err != nil {
		return err
	}
	interactive, err := cmd.Flags().GetBool("step")
	if err != nil {
		return err
	}

	s, res, err := compileForCommand(cmd, args[0], buildpipeline.StageRegalloc)
	if err != nil {
		return err
	}
	if !reached(res, buildpipeline.StageRegalloc) {
		return finish(s, res)
	}

	switch {
	case interactive:
		err = runStepViewer(res.Alloc)
	case s.format == "json":
		err = diagfmt.WriteJSON(os.Stdout, res.Alloc)
	default:
		section(s, os.Stdout, "Register Allocation")
		diagfmt.FormatAllocationPretty(os.Stdout, *res.Alloc, showSteps)
	}
	if err != nil {
		return err
	}
	return finish(s, res)
}
