// Package handler exposes the record store controller over HTTP.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ncmr/internal/ncmr/controller"
	"ncmr/internal/ncmr/models"
	dErrors "ncmr/pkg/domain-errors"
	"ncmr/pkg/platform/httputil"
	"ncmr/pkg/requestcontext"
)

// Handler wires NCMR endpoints to a controller.
type Handler struct {
	ctrl   *controller.Controller
	logger *slog.Logger
}

func New(ctrl *controller.Controller, logger *slog.Logger) *Handler {
	return &Handler{ctrl: ctrl, logger: logger}
}

// Register mounts the NCMR endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/ncmrs", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/summary", h.HandleSummary)
		r.Get("/state", h.HandleState)
		r.Post("/reload", h.HandleReload)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}/status", h.HandleUpdateStatus)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleList handles GET /ncmrs?search=&status=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := models.ParseStatusFilter(q.Get("status"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records := h.ctrl.QueryAll(models.Filter{Search: q.Get("search"), Status: status})
	httputil.WriteJSON(w, http.StatusOK, newListResponse(records))
}

func (h *Handler) HandleSummary(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.ctrl.Summary())
}

func (h *Handler) HandleState(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, StateResponse{State: h.ctrl.State(), CanDelete: h.ctrl.CanDelete()})
}

// HandleReload handles POST /ncmrs/reload.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if err := h.ctrl.Load(ctx); err != nil {
		httputil.WriteError(w, err)
		return
	}
	records := h.ctrl.Records()
	h.logger.InfoContext(ctx, "ncmrs reloaded",
		"request_id", requestcontext.RequestID(ctx),
		"count", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, newListResponse(records))
}

// HandleCreate handles POST /ncmrs.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[CreateRequest](w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	draft, err := req.Draft()
	if err != nil {
		h.logger.WarnContext(ctx, "rejected ncmr draft",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	record, err := h.ctrl.Create(ctx, draft)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

// HandleGet handles GET /ncmrs/{id} and makes the record the selected one.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.ctrl.Select(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleUpdateStatus handles PUT /ncmrs/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := httputil.DecodeJSON[StatusRequest](w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.ctrl.UpdateStatus(r.Context(), id, status); err != nil {
		httputil.WriteError(w, err)
		return
	}
	for _, rec := range h.ctrl.Records() {
		if rec.ID == id {
			httputil.WriteJSON(w, http.StatusOK, rec)
			return
		}
	}
	// Removed by a concurrent delete after the update succeeded.
	httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "ncmr not found"))
}

// HandleDelete handles DELETE /ncmrs/{id}. The request is the confirmation.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ctrl.Delete(r.Context(), chi.URLParam(r, "id"), controller.Confirmed); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnsupported) {
			// the record itself can still be read
			w.Header().Set("Allow", http.MethodGet)
		}
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
