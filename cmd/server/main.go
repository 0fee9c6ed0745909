package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"ncmr/internal/ncmr/app"
	"ncmr/internal/platform/config"
	"ncmr/internal/platform/httpserver"
	"ncmr/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", os.Getenv("NCMR_CONFIG"), "optional config file (yaml, json or toml)")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, "ncmr-server:", err)
		os.Exit(1)
	}
}

// run wires dependencies and blocks until a signal arrives or the listener
// fails.
func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, log, registry)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("close store", "error", err)
		}
	}()

	// The service may be down at startup; the load error stays visible on
	// /ncmrs/state and POST /ncmrs/reload retries.
	if err := a.Controller.Load(ctx); err != nil {
		log.WarnContext(ctx, "initial load failed", "error", err)
	}

	srv := httpserver.New(cfg.Addr, newRouter(routerDeps{
		ctrl:           a.Controller,
		logger:         log,
		registry:       registry,
		accessPassword: cfg.AccessPassword,
	}))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting ncmr server", "addr", cfg.Addr, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
