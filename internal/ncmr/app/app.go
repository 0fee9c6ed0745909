// Package app assembles a controller and its backend from configuration.
// Both the HTTP server and ncmrctl start here.
package app

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"ncmr/internal/ncmr/controller"
	"ncmr/internal/ncmr/local"
	"ncmr/internal/ncmr/metrics"
	"ncmr/internal/ncmr/models"
	"ncmr/internal/ncmr/remote"
	"ncmr/internal/ncmr/store"
	"ncmr/internal/platform/config"
	dErrors "ncmr/pkg/domain-errors"
)

// App owns the controller and the resources behind its backend.
type App struct {
	Controller *controller.Controller
	Mode       config.Mode
	store      *store.Handle
}

// New builds the backend selected by cfg.Mode. reg may be nil to skip
// metrics.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	rule, err := models.ParseNumberRule(cfg.NumberRule)
	if err != nil {
		return nil, err
	}

	a := &App{Mode: cfg.Mode}
	var backend controller.RecordService
	switch cfg.Mode {
	case config.ModeRemote:
		client, err := remote.NewClient(remote.Config{
			BaseURL:  cfg.Remote.URL,
			Username: cfg.Remote.User,
			Password: cfg.Remote.Password,
			Timeout:  cfg.Remote.Timeout,
		}, remote.WithLogger(logger))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeConfig, "configure record service")
		}
		backend = client
	case config.ModeLocal:
		handle, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeConfig, "open store")
		}
		svc, err := local.New(handle, local.WithNumberRule(rule))
		if err != nil {
			_ = handle.Close()
			return nil, err
		}
		a.store = handle
		backend = svc
	default:
		return nil, dErrors.New(dErrors.CodeConfig, "unknown mode: "+string(cfg.Mode))
	}

	opts := []controller.Option{
		controller.WithLogger(logger),
		controller.WithNumberRule(rule),
	}
	if reg != nil {
		opts = append(opts, controller.WithMetrics(metrics.New(reg)))
	}
	ctrl, err := controller.New(backend, opts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Controller = ctrl

	logger.InfoContext(ctx, "record store ready",
		"mode", cfg.Mode,
		"store_driver", a.storeDriver(),
		"number_rule", rule,
		"can_delete", ctrl.CanDelete(),
	)
	return a, nil
}

func (a *App) storeDriver() string {
	if a.store == nil {
		return ""
	}
	return string(a.store.Driver)
}

// Close releases the local store, if any.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
