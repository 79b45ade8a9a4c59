package main

import (
	"fmt"
	"os"

	"rencontre_backend/internal/app"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rencontre",
	Short: "Rencontre dating platform API",
	Long: `Rencontre dating platform API.

Without a subcommand the HTTP server is started.

Examples:
  rencontre                           # same as "rencontre serve"
  rencontre migrate                   # create or update the database schema
  rencontre serve --config prod.yaml  # read config from a YAML file`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			return os.Setenv("CONFIG_PATH", configPath)
		}
		return nil
	},
	Run: serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Run:   serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database auto-migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate()
	},
}

func serve(cmd *cobra.Command, args []string) {
	app.Run()
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (used when DATABASE_URL is not set)")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
