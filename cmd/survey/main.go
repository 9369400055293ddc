// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command survey runs the joke survey in the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/danielhkuo/joke-survey/catalog"
	"github.com/danielhkuo/joke-survey/cliparse"
	"github.com/danielhkuo/joke-survey/export"
	"github.com/danielhkuo/joke-survey/identity"
	"github.com/danielhkuo/joke-survey/kvstore"
	"github.com/danielhkuo/joke-survey/logging"
	"github.com/danielhkuo/joke-survey/progress"
	"github.com/danielhkuo/joke-survey/survey"
	"github.com/danielhkuo/joke-survey/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "survey:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		return err
	}

	cfg, err := cliparse.ParseClientFlags(os.Args[1:])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	// The alternate screen owns the terminal, so logs only go to a file.
	logger, closeLog, err := logging.New(logging.Options{
		File:  filepath.Join(cfg.StateDir, "survey.log"),
		Level: logging.ParseLevel(cfg.LogLevel),
	})
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	kv, err := kvstore.Open(kvstore.Driver(cfg.StateBackend), cfg.StateDir)
	if err != nil {
		return err
	}
	if c, ok := kv.(interface{ Close() error }); ok {
		defer c.Close()
	}

	respondentID, err := identity.Load(kv)
	if err != nil {
		return err
	}
	slog.Info("survey client starting", "respondent_id", respondentID, "catalog", cfg.Catalog, "backend", cfg.StateBackend)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	gateway := export.NewGateway(export.NewRelayClient(cfg.RelayURL, httpClient))
	store := progress.New(kv, logger)

	downloadDir, err := os.Getwd()
	if err != nil {
		downloadDir = cfg.StateDir
	}

	return tui.Start(tui.Options{
		Load: func(ctx context.Context) (*survey.Session, error) {
			items, err := catalog.Load(ctx, cfg.Catalog, httpClient)
			if err != nil {
				slog.Error("failed to load catalog", "catalog", cfg.Catalog, "error", err)
				return nil, err
			}
			slog.Info("catalog loaded", "items", len(items))
			return survey.New(items, respondentID, store, gateway, survey.WithLogger(logger)), nil
		},
		DownloadDir: downloadDir,
		NoConfirm:   cfg.NoConfirm,
	})
}
