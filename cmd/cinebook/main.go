// Package main is the cinebook command-line client. It drives the same
// catalog views as the web front end against the remote cinema API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/cinebook/internal/catalog"
	"github.com/dharsanguruparan/cinebook/internal/config"
	"github.com/dharsanguruparan/cinebook/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cinebook: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs once the global flags are parsed.
type app struct {
	configPath string
	apiURL     string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	gateway catalog.Gateway
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "cinebook",
		Short: "Browse and manage the cinema catalog",
		Long: `cinebook lists, shows, adds, updates and deletes movies in the cinema
catalog. Settings come from cinebook.yaml, CINEBOOK_* environment variables
and the flags below, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default cinebook.yaml when present)")
	cmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Catalog API collection URL")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.AddCommand(
		newListCmd(a),
		newGenresCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.gateway = catalog.New(cfg.APIURL,
		catalog.WithTimeout(cfg.RequestTimeout),
		catalog.WithLogger(logger))
	return nil
}
