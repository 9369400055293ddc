// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/joke-survey/cliparse"
	"github.com/danielhkuo/joke-survey/contentstore"
	"github.com/danielhkuo/joke-survey/db"
	"github.com/danielhkuo/joke-survey/logging"
	"github.com/danielhkuo/joke-survey/metrics"
	"github.com/danielhkuo/joke-survey/router"
)

func main() {
	var err error

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Console: os.Stderr,
		File:    cfg.LogFile,
		Level:   logging.ParseLevel(cfg.LogLevel),
	})
	if err != nil {
		slog.Error("logger setup failed", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Connect to the ledger database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// A store that cannot be configured still lets the relay start; every
	// upload then answers 500 with the reason.
	ctx := context.Background()
	store, err := contentstore.Open(ctx, cfg.StoreConfig())
	if err != nil {
		var cfgErr *contentstore.ConfigError
		if !errors.As(err, &cfgErr) {
			slog.Error("content store setup failed", "driver", cfg.StoreDriver, "error", err)
			os.Exit(1)
		}
		slog.Warn("content store not configured, uploads will fail", "driver", cfg.StoreDriver, "reason", cfgErr.Message)
		store = contentstore.Unavailable(contentstore.Driver(cfg.StoreDriver), err)
	} else {
		slog.Info("Content store ready", "driver", store.Driver())
	}

	// Create router
	handler := router.NewRouter(dbConn, store, metrics.New(), cfg)

	// Create server
	server := http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
