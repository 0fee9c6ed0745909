// Package controller holds the canonical in-memory list of NCMRs and mediates
// every create, read, status update and delete against a record backend.
//
// Mutations are atomic from a reader's point of view: a status change is
// applied optimistically and either kept or fully rolled back to the snapshot
// taken before it. The mutex is never held across a backend call.
package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"ncmr/internal/ncmr/metrics"
	"ncmr/internal/ncmr/models"
	dErrors "ncmr/pkg/domain-errors"
)

// RecordService is the backend the controller synchronizes with.
type RecordService interface {
	List(ctx context.Context) ([]models.Record, error)
	// Create returns the stored record, or nil when the backend returned
	// nothing usable; the controller then synthesizes one from the draft.
	Create(ctx context.Context, draft models.Draft) (*models.Record, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) error
}

// Deleter is implemented by backends that support removal. The remote record
// service does not.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Confirmer is the blocking yes/no prompt shown before a delete.
type Confirmer func(record models.Record) bool

// Confirmed approves every delete. Used where the request itself is the
// confirmation (HTTP DELETE, ncmrctl delete --yes).
func Confirmed(models.Record) bool { return true }

var (
	ErrDeleteUnsupported = dErrors.New(dErrors.CodeUnsupported, "delete is not available for this backend")
	ErrNotFound          = dErrors.New(dErrors.CodeNotFound, "ncmr not found")
)

// State exposes progress flags and operation-scoped error messages to the
// presentation layer. Empty messages mean the last attempt succeeded.
type State struct {
	Loading     bool   `json:"loading"`
	Submitting  bool   `json:"submitting"`
	LoadError   string `json:"loadError,omitempty"`
	SubmitError string `json:"submitError,omitempty"`
	StatusError string `json:"statusError,omitempty"`
	DeleteError string `json:"deleteError,omitempty"`
}

// Controller is the record store. Create one per session with New.
type Controller struct {
	backend    RecordService
	logger     *slog.Logger
	metrics    *metrics.Metrics
	numberRule models.NumberRule
	newID      func() string

	mu       sync.RWMutex
	records  []models.Record
	selected *models.Record
	state    State
}

type Option func(c *Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithNumberRule selects how missing display numbers are derived.
func WithNumberRule(rule models.NumberRule) Option {
	return func(c *Controller) {
		c.numberRule = rule
	}
}

// WithIDGenerator overrides the id used for records synthesized after the
// backend returned no usable record.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		c.newID = fn
	}
}

// New constructs a Controller. The collection starts empty; call Load.
func New(backend RecordService, opts ...Option) (*Controller, error) {
	if backend == nil {
		return nil, dErrors.New(dErrors.CodeConfig, "record service is required")
	}
	c := &Controller{
		backend:    backend,
		logger:     slog.New(slog.DiscardHandler),
		numberRule: models.NumberRuleSequence,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CanDelete reports whether the backend supports removal.
func (c *Controller) CanDelete() bool {
	_, ok := c.backend.(Deleter)
	return ok
}

// Records returns a copy of the collection, most recent first.
func (c *Controller) Records() []models.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneRecords(c.records)
}

// State returns a copy of the progress and error state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Summary recounts the collection on every call.
func (c *Controller) Summary() models.Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.Summarize(c.records)
}

// Select marks a record as the one shown in the detail view.
func (c *Controller) Select(id string) (models.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		return models.Record{}, ErrNotFound
	}
	selected := c.records[idx]
	c.selected = &selected
	return selected, nil
}

// Selected returns the detail-view record, if any.
func (c *Controller) Selected() (models.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return models.Record{}, false
	}
	return *c.selected, true
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

func (c *Controller) indexLocked(id string) int {
	for i := range c.records {
		if c.records[i].ID == id {
			return i
		}
	}
	return -1
}
