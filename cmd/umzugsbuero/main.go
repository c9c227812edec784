package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"umzugsbuero/backend/internal/app"
	"umzugsbuero/backend/internal/app/config"
	"umzugsbuero/backend/internal/infra/logger"
	"umzugsbuero/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "umzugsbuero",
		Short:         "Back office service for moving quotes, invoices and confirmations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd(), importCalendarCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the maintenance schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, cfg, log)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			backend, err := app.OpenBackend(cmd.Context(), cfg, true, log)
			if err != nil {
				return err
			}
			defer backend.Close()

			if len(backend.Migrated) == 0 {
				fmt.Println("schema is up to date")
				return nil
			}
			for _, name := range backend.Migrated {
				fmt.Printf("applied %s\n", name)
			}
			return nil
		},
	}
}

func importCalendarCmd() *cobra.Command {
	var (
		file  string
		since string
	)
	cmd := &cobra.Command{
		Use:   "import-calendar",
		Short: "Import customers and draft quotes from a calendar CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			var cutoff *time.Time
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("--since must be YYYY-MM-DD: %w", err)
				}
				cutoff = &t
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			backend, err := app.OpenBackend(ctx, cfg, false, log)
			if err != nil {
				return err
			}
			defer backend.Close()

			rep, err := service.NewCalendarImporter(app.Deps(cfg, backend, log)).Import(ctx, string(data), cutoff)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the CSV export")
	cmd.Flags().StringVar(&since, "since", "", "skip events before this date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
