package main

import (
	"fmt"
	"os"

	"github.com/aretw0/cuepoint/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cuepoint",
	Short: "Cuepoint is a reactive interactivity engine for learning content",
	Long: `Cuepoint runs content units described by a declarative configuration:
typed variables, object states, branching rules and event triggers.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", "", "Project directory holding .cuepoint/sessions (default: next to the configuration)")
	rootCmd.PersistentFlags().String("redis", "", "Redis URL for session storage (e.g. redis://localhost:6379/0)")
	rootCmd.PersistentFlags().Duration("session-ttl", 0, "Expire Redis sessions after this duration")
	rootCmd.PersistentFlags().String("encryption-key", "", "Encrypt stored sessions with this AES-256 key (hex or base64)")
	rootCmd.PersistentFlags().StringSlice("fallback-key", nil, "Retired encryption keys still accepted for reading")
	rootCmd.PersistentFlags().StringSlice("redact", nil, "Mask variables matching these patterns before saving")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

func persistenceFlags(cmd *cobra.Command) cli.PersistenceOptions {
	dir, _ := cmd.Flags().GetString("dir")
	redisURL, _ := cmd.Flags().GetString("redis")
	ttl, _ := cmd.Flags().GetDuration("session-ttl")
	key, _ := cmd.Flags().GetString("encryption-key")
	fallback, _ := cmd.Flags().GetStringSlice("fallback-key")
	redact, _ := cmd.Flags().GetStringSlice("redact")
	if redisURL == "" {
		redisURL = os.Getenv("CUEPOINT_REDIS_URL")
	}
	if key == "" {
		key = os.Getenv("CUEPOINT_ENCRYPTION_KEY")
	}
	return cli.PersistenceOptions{
		Dir:           dir,
		RedisURL:      redisURL,
		TTL:           ttl,
		EncryptionKey: key,
		FallbackKeys:  fallback,
		Redact:        redact,
	}
}

func logFlags(cmd *cobra.Command) (bool, string) {
	debug, _ := cmd.Flags().GetBool("debug")
	level, _ := cmd.Flags().GetString("log-level")
	return debug, level
}
