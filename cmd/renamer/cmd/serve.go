package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solatis/renamer/internal/core/api"
	"github.com/solatis/renamer/internal/core/auth"
	"github.com/solatis/renamer/internal/core/config"
	"github.com/solatis/renamer/internal/core/packfile"
	"github.com/solatis/renamer/internal/core/server"
	"github.com/solatis/renamer/internal/core/session"
	"github.com/solatis/renamer/internal/pipeline"
	"github.com/solatis/renamer/internal/rules"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC rename service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
	serveCmd.Flags().String("packs-file", "", "YAML pack file used when no database is configured")
	serveCmd.Flags().Bool("insecure", false, "serve without API key authentication (requires no --db-url)")
}

// loadConfig binds cmd's flags over environment, file and defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New()
	bindings := map[string]string{
		"server.host":        "host",
		"server.port":        "port",
		"renamer.packs_file": "packs-file",
	}
	for key, flag := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	insecure, _ := cmd.Flags().GetBool("insecure")

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	var authenticator *auth.Authenticator
	switch {
	case b.queries != nil:
		secrets, err := config.HMACSecrets()
		if err != nil {
			return fmt.Errorf("failed to load HMAC secrets: %w", err)
		}
		if len(secrets) == 0 {
			return fmt.Errorf("no HMAC secrets configured (set %s_HMAC_SECRET environment variable)", config.EnvPrefix)
		}
		authenticator = auth.NewAuthenticator(secrets, b.queries, logger)
	case !insecure:
		return fmt.Errorf("--db-url required for API key authentication (or pass --insecure)")
	}

	reg, err := loadRegistry(ctx, cfg, b)
	if err != nil {
		return fmt.Errorf("failed to load rule packs: %w", err)
	}

	p, err := pipeline.New(rules.NewResolver(reg), pipeline.Options{
		RenamePriority: cfg.Renamer.RenamePriority,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	selections := session.NewCache(cfg.Renamer.SelectionTTL)
	defer selections.Stop()

	var saver api.PackSaver
	switch {
	case b.store != nil:
		saver = b.store
	case cfg.Renamer.PacksFile != "":
		saver = packfile.NewSaver(cfg.Renamer.PacksFile, reg)
	default:
		logger.Warn("no database or pack file configured, captured rules are kept in memory only")
	}
	service, err := api.NewRenameService(p, selections, saver, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg.Server, service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"version": Version,
		"addr":    cfg.Server.Addr(),
		"packs":   reg.Names(),
	}).Info("starting rename service")

	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return grpcServer.Shutdown(ctx)
	}
}
