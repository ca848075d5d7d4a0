// Package main is the entry point for the objview mesh viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/objview/internal/assets"
	"github.com/Faultbox/objview/internal/config"
	"github.com/Faultbox/objview/internal/engine/debug"
	"github.com/Faultbox/objview/internal/engine/input"
	"github.com/Faultbox/objview/internal/engine/renderer"
	"github.com/Faultbox/objview/internal/engine/window"
	"github.com/Faultbox/objview/internal/logger"
	"github.com/Faultbox/objview/internal/viewer"
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

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", filepath.Join(config.ConfigDir(), config.FileName))
		return
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== objview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fail(err)
	}

	logger.Info("viewer closed normally")
}

// run loads every asset before touching the GPU, so a failed load never
// opens a window.
func run(ctx context.Context, cfg *config.Config) error {
	fetcher := assets.NewFetcher(nil)
	m, err := assets.LoadMeshes(ctx, fetcher, cfg.Assets.Sources)
	if err != nil {
		return fmt.Errorf("loading assets: %w", err)
	}
	// The merged mesh owns its own copy; raw file bytes are no longer needed.
	fetcher.Cache().Clear()

	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := win.DrawableSize()
	r, err := renderer.New(renderer.Config{Width: width, Height: height})
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Close()

	shots := debug.NewScreenshotCapture(cfg.Screenshot.Dir, "objview", cfg.Screenshot.Format)
	v := viewer.New(cfg, input.RelativeMouse{}, shots)
	v.Resize(width, height)
	if err := v.Start(m, r); err != nil {
		return err
	}

	return v.Run(ctx, input.New(), win)
}

// fail logs err, shows it to the user and exits.
func fail(err error) {
	logger.Error("fatal error", zap.Error(err))
	dialog.Message("%s", err.Error()).Title("objview").Error()
	logger.Sync()
	os.Exit(1)
}
