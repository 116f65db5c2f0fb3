package main

import (
	"github.com/aretw0/cuepoint/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Check a unit configuration for consistency",
	Long: `Reports unknown event and action names, unreachable branching rules,
references to undefined variables or nodes, and other authoring mistakes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
