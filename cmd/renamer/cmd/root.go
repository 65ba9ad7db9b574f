package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is the CLI version.
const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string

	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:           "renamer",
	Version:       Version,
	Short:         "Reversible item renaming service",
	Long:          `renamer applies operator-defined display names, lore and enchantments to item snapshots and restores the originals on demand.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(logger, logLevel, logFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

// setupLogger applies level and format to log.
func setupLogger(log *logrus.Logger, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid --log-format %q (expected json or text)", format)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		return err
	}
	return nil
}
