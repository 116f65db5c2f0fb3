package main

import (
	"github.com/aretw0/cuepoint/internal/cli"
	"github.com/aretw0/cuepoint/internal/logging"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <config>",
	Short: "Export the branching rules as a Mermaid diagram",
	Long:  `Outputs a Mermaid diagram (graph TD) of every decision point. With --session, the path that session took is highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		return cli.Graph(cmd.Context(), args[0], sessionID, persistenceFlags(cmd), cmd.OutOrStdout(), logging.NewNop())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the path taken by this session")
}
