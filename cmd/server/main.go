// Package main - Entry point for the landed-cost evaluation server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"landed-cost/api"
	"landed-cost/internal/config"
	"landed-cost/internal/logging"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "config file (JSON or YAML)")
	addr := flag.String("addr", "", "server address (overrides config)")
	flag.Parse()

	if err := run(*cfgPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, addr string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	config.Set(cfg)
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	if addr == "" {
		addr = cfg.Server.Addr
	}

	apiServer := api.NewServer(version, serverOptions(cfg), cfg.Server.MetricsEnabled)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.WatchConfig {
		go func() {
			err := config.Watch(ctx, cfgPath, func(next *config.Config) {
				config.Set(next)
				logging.SetLevel(next.Logging.Level)
				apiServer.SetOptions(serverOptions(next))
			})
			if err != nil {
				logging.Warn("config watch stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("landed-cost server listening",
			zap.String("addr", addr),
			zap.String("version", version),
			zap.Bool("metrics", cfg.Server.MetricsEnabled),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func serverOptions(cfg *config.Config) api.Options {
	return api.Options{
		Defaults:     cfg.InputDefaults(),
		Currency:     cfg.Output.Currency,
		Locale:       cfg.Output.Locale,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}
}
