package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "Cookie-authenticated REST API with CSRF protection",
		Long: `Quill serves the auth and user API: credential cookies, double-submit
CSRF tokens bound to a session key, and admin-only user management.

Configuration is read from the file given by --config or QUILL_CONFIG.
QUILL_JWT_SECRET, QUILL_DATABASE_URL, QUILL_REDIS_ADDR, QUILL_LISTEN_ADDR,
QUILL_FRONTEND_URL and QUILL_ENV override values from the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the quill.yaml config file (default $QUILL_CONFIG)")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		versionCmd(),
	)

	return rootCmd
}
