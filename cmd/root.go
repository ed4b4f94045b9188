package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/config"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/logging"
	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
)

var (
	dbPath   string
	dbURL    string
	userFlag string
	format   string
	logLevel string

	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:               "aikinote",
	Short:             "Aikido training log",
	Long:              "Record training pages tagged by tori, uke and waza, and find them again by tag, title or date.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	defaults := config.DefaultConfig()
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaults.DBPath, "SQLite database file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string (overrides --db)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", defaults.User, "User whose training log to use")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
}

func Execute() error {
	return rootCmd.Execute()
}

// setup loads config file and env vars as base, then overrides with flags.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		loaded.DBPath = dbPath
	}
	if flags.Changed("db-url") {
		loaded.DBUrl = dbURL
	}
	if flags.Changed("user") {
		loaded.User = userFlag
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q (want text or json)", format)
	}

	l, err := logging.New(logging.Config{Level: loaded.LogLevel, Format: loaded.LogFormat})
	if err != nil {
		return err
	}

	cfg = loaded
	logger = l
	return nil
}

func openStore() (*db.DB, error) {
	if cfg.DBUrl != "" {
		d, err := db.OpenPostgres(cfg.DBUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return d, nil
	}

	d, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return d, nil
}

// openService opens the configured store. The returned func closes it.
func openService() (*trainlog.Service, func(), error) {
	d, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := d.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}
	return trainlog.New(d, trainlog.WithLogger(logger)), closeFn, nil
}
