package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tacc/internal/buildpipeline"
	"tacc/internal/driver"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] file.tac",
	Short: "Execute a program with the interpreter",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgram,
}

func init() {
	runCmd.Flags().Int("max-steps", 0, "stop after this many statements (0 = manifest or default)")
}

func runProgram(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	s, err := loadSettings(cmd, filePath)
	if err != nil {
		return err
	}

	opts := s.driverOptions()
	opts.Until = buildpipeline.StageParse
	opts.Run = true
	opts.RunOut = os.Stdout
	if cmd.Flags().Changed("max-steps") {
		if opts.RunOptions.MaxSteps, err = cmd.Flags().GetInt("max-steps"); err != nil {
			return err
		}
	}

	res, err := driver.CompileFile(cmd.Context(), filePath, opts)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	if err := printDiagnostics(s, res.Bag, res.FileSet); err != nil {
		return err
	}
	if res.RunStats != nil && s.timings && s.format != "json" {
		fmt.Fprintf(os.Stdout, "steps %d, calls %d, max depth %d\n",
			res.RunStats.Steps, res.RunStats.Calls, res.RunStats.MaxDepth)
	}
	return finish(s, res)
}
