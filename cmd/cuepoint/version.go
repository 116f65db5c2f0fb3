package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/cuepoint"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cuepoint",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cuepoint version %s\n", strings.TrimSpace(cuepoint.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
