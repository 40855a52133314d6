package main

import (
	"os"

	"github.com/spf13/cobra"

	"tacc/internal/buildpipeline"
	"tacc/internal/diagfmt"
)

var cpuCmd = &cobra.Command{
	Use:   "cpu [flags] file.tac",
	Short: "Emit code for the abstract CPU",
	Args:  cobra.ExactArgs(1),
	RunE:  runCPU,
}

func init() {
	cpuCmd.Flags().Int("registers", 8, "number of physical registers")
}

func runCPU(cmd *cobra.Command, args []string) error {
	s, res, err := compileForCommand(cmd, args[0], buildpipeline.StageCPU)
	if err != nil {
		return err
	}
	if !reached(res, buildpipeline.StageCPU) {
		return finish(s, res)
	}

	if s.format == "json" {
		err = diagfmt.WriteJSON(os.Stdout, res.CPU)
	} else {
		section(s, os.Stdout, "CPU Code (Assembly-like)")
		err = diagfmt.FormatCPUPretty(os.Stdout, res.CPU)
	}
	if err != nil {
		return err
	}
	return finish(s, res)
}
