package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-intel/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a saved analysis against the response schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string, out io.Writer) error {
	if err := schemas.ValidateAnalyzeResponseFile(path); err != nil {
		return fmt.Errorf("%s is not a valid analysis: %w", path, err)
	}
	_, _ = fmt.Fprintf(out, "%s is valid\n", path)
	return nil
}
