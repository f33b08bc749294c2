// Package main is the entry point for the logo teaser.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/logo-teaser/internal/config"
	"github.com/Faultbox/logo-teaser/internal/logger"
	"github.com/Faultbox/logo-teaser/internal/teaser"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if config.SaveRequested() {
		path, err := cfg.Save()
		if err != nil {
			logger.Error("failed to save config", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("config saved", zap.String("path", path))
		return
	}

	logger.Info("=== Logo Teaser ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := teaser.New(cfg)
	if err != nil {
		logger.Error("failed to create teaser", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error("teaser error", zap.Error(err))
		app.Close()
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("teaser closed normally")
}
