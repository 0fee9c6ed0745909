package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ncmr/internal/ncmr/controller"
	"ncmr/internal/ncmr/handler"
	"ncmr/internal/platform/metrics"
	"ncmr/internal/platform/middleware"
	"ncmr/pkg/platform/httputil"
	"ncmr/pkg/platform/middleware/access"
	"ncmr/pkg/platform/middleware/metadata"
	"ncmr/pkg/platform/middleware/request"
	"ncmr/pkg/platform/middleware/requesttime"
)

type routerDeps struct {
	ctrl           *controller.Controller
	logger         *slog.Logger
	registry       *prometheus.Registry
	accessPassword string
}

// newRouter mounts health and metrics outside the access gate and the NCMR
// API behind it.
func newRouter(d routerDeps) http.Handler {
	httpMetrics := metrics.New(d.registry)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recovery(d.logger, httpMetrics))
	r.Use(middleware.Latency(httpMetrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{Registry: d.registry}))

	r.Group(func(r chi.Router) {
		r.Use(access.RequirePassword(d.accessPassword, d.logger))
		handler.New(d.ctrl, d.logger).Register(r)
	})
	return r
}
