package main

import (
	"github.com/aretw0/cuepoint/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <config>",
	Short: "Host unit sessions over HTTP",
	Long: `Starts an HTTP server exposing sessions of the unit: create a session,
post input events, evaluate decision points and stream state diffs over SSE.
Prometheus metrics are served on /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, level := logFlags(cmd)
		port, _ := cmd.Flags().GetString("port")
		watch, _ := cmd.Flags().GetBool("watch")
		functions, _ := cmd.Flags().GetString("functions")

		return cli.Serve(cli.ServeOptions{
			ConfigPath:    args[0],
			FunctionsPath: functions,
			Addr:          ":" + port,
			Watch:         watch,
			Debug:         debug,
			LogLevel:      level,
			Persistence:   persistenceFlags(cmd),
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload the configuration when it changes")
	serveCmd.Flags().String("functions", "", "Functions file for executeFunction")
}
