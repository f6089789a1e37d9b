package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docsplice/internal/api"
	"github.com/dgallion1/docsplice/internal/config"
	"github.com/dgallion1/docsplice/internal/inject"
	"github.com/dgallion1/docsplice/internal/pipeline"
	"github.com/dgallion1/docsplice/internal/verify"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Injection and screenshots are optional.
	var injector *inject.Injector
	var shooter *verify.Shooter
	if cfg.InjectionEnabled() {
		rules, err := inject.LoadRules(cfg.RulesPath)
		if err != nil {
			log.Error("invalid injection rules", "path", cfg.RulesPath, "error", err)
			os.Exit(1)
		}
		injector = inject.New(cfg.SiteDir, rules, false, log.With("component", "inject"))
		if cfg.ScreenshotDir != "" {
			shooter = verify.New(cfg.ChromeHeadless, log.With("component", "verify"))
		}
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, injector, shooter, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting docsplice",
		"port", cfg.Port,
		"injection", cfg.InjectionEnabled(),
		"screenshots", shooter != nil,
		"auth", cfg.APIKey != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
