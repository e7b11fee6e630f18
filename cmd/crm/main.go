package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aussiebroadwan/leadboard/internal/crm/app"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crm",
	Short: "Leadboard multi-tenant sales pipeline service",
	Long: `Leadboard serves the CRM HTTP API: companies, pipeline stages, leads
and their notes, tags and custom fields.

Configuration is read from the environment, optionally layered over the YAML
file named by CRM_CONFIG_FILE.`,
	SilenceUsage: true,
}

// serveCmd runs the HTTP API until SIGINT or SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

This command:
1. Applies pending database migrations
2. Loads or generates the signing key and pepper
3. Serves until interrupted, then drains in-flight requests`,
	RunE: runServe,
}

// migrateCmd applies migrations without starting the server.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	st, err := app.OpenStore(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	if err := st.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", "driver", cfg.DatabaseDriver)
	return nil
}
