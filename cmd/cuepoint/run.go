package main

import (
	"github.com/aretw0/cuepoint/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <config>",
	Short: "Run a content unit in the terminal",
	Long: `Loads a unit configuration (YAML or JSON) and drives it from the terminal.
Type events such as "press submit" or "eval after-quiz"; use --script to replay
a scripted walkthrough with expectations, or --json to stream NDJSON steps.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, level := logFlags(cmd)
		opts := cli.RunOptions{
			ConfigPath:  args[0],
			Debug:       debug,
			LogLevel:    level,
			Persistence: persistenceFlags(cmd),
		}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Trace, _ = cmd.Flags().GetBool("trace")
		opts.ScriptPath, _ = cmd.Flags().GetString("script")
		opts.FunctionsPath, _ = cmd.Flags().GetString("functions")

		return cli.Execute(opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID for persistent progress")
	runCmd.Flags().Bool("fresh", false, "Discard the session's saved progress first")
	runCmd.Flags().BoolP("watch", "w", false, "Reload when the configuration changes")
	runCmd.Flags().Bool("json", false, "Read JSON steps and write NDJSON results")
	runCmd.Flags().Bool("trace", false, "Print every engine event")
	runCmd.Flags().String("script", "", "Replay a YAML script of steps and expectations")
	runCmd.Flags().String("functions", "", "Functions file for executeFunction (default: functions.yaml next to the configuration)")
}
