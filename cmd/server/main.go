// Package main runs the CineBook web front end.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dharsanguruparan/cinebook/internal/catalog"
	"github.com/dharsanguruparan/cinebook/internal/config"
	"github.com/dharsanguruparan/cinebook/internal/logging"
	"github.com/dharsanguruparan/cinebook/internal/preview"
	"github.com/dharsanguruparan/cinebook/internal/processing"
	"github.com/dharsanguruparan/cinebook/internal/s3storage"
	"github.com/dharsanguruparan/cinebook/internal/server"
	"github.com/dharsanguruparan/cinebook/internal/signing"
	"github.com/dharsanguruparan/cinebook/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cinebook-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		return err
	}
	gateway := catalog.New(cfg.APIURL,
		catalog.WithTimeout(cfg.RequestTimeout),
		catalog.WithLogger(logger))
	processor := processing.New(cfg.PreviewWorkers,
		processing.WithLogger(logger),
		processing.WithEncoder(preview.Encoder(cfg.InlinePreviewBytes)))
	signer := signing.NewSigner(cfg.SessionKey)

	srv, err := server.New(cfg, gateway, processor, blobs, signer, logger)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}
	logger.Debug("configuration loaded",
		slog.String("file", cfg.Source),
		slog.String("blobs", cfg.BlobBackend),
		slog.Int("preview_workers", cfg.PreviewWorkers))
	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// openBlobs selects where staged uploads live until they are submitted.
func openBlobs(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	if cfg.BlobBackend != config.BackendS3 {
		return storage.NewMemoryBlobs(), nil
	}
	store, err := s3storage.New(cfg.S3)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
