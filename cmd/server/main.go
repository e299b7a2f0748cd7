// screenlate server - captures a selected screen region, OCRs it, and streams
// translations to connected UI clients.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/screenlate/screenlate/internal/config"
	"github.com/screenlate/screenlate/internal/controller"
	"github.com/screenlate/screenlate/internal/ocr"
	"github.com/screenlate/screenlate/internal/screen"
	"github.com/screenlate/screenlate/internal/server"
	"github.com/screenlate/screenlate/internal/translate"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if cfg.DeepLAuthKey == "" {
		slog.Error("missing DEEPL_AUTH_KEY environment variable")
		os.Exit(1)
	}

	engine, err := ocr.NewTesseract(cfg.OCRLanguage)
	if err != nil {
		slog.Error("failed to initialize OCR engine", "language", cfg.OCRLanguage, "error", err)
		os.Exit(1)
	}
	defer func() { _ = engine.Close() }()

	translator := translate.NewClient(cfg.DeepLAuthKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.New()
	ctrl := controller.New(cfg, screen.NewGrabber(), engine, translator, srv)
	srv.Bind(ctx, ctrl)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("screenlate server starting",
			"http", cfg.HTTPAddr,
			"languages", cfg.SourceLang+"->"+cfg.TargetLang,
			"interval", cfg.PollInterval)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	ctrl.Stop()
	slog.Info("shutdown complete")
}
