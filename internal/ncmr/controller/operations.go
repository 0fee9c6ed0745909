package controller

import (
	"context"
	"time"

	"ncmr/internal/ncmr/models"
	dErrors "ncmr/pkg/domain-errors"
	"ncmr/pkg/requestcontext"
)

const (
	opLoad         = "load"
	opCreate       = "create"
	opUpdateStatus = "update_status"
	opDelete       = "delete"
)

// Load replaces the collection with everything the backend returns.
// On failure the collection is left empty and LoadError is set. No retry.
func (c *Controller) Load(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.observe(opLoad, start, err) }()

	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	// Issued requests are not abortable; a caller that gives up does not cancel them.
	fetched, listErr := c.backend.List(context.WithoutCancel(ctx))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if listErr != nil {
		c.records = nil
		c.selected = nil
		c.state.LoadError = "failed to load NCMRs: " + listErr.Error()
		c.setRecordsGauge()
		c.logger.ErrorContext(ctx, "failed to load ncmrs",
			"request_id", requestcontext.RequestID(ctx),
			"error", listErr,
		)
		return dErrors.Wrap(listErr, dErrors.CodeUnavailable, "failed to load NCMRs")
	}

	c.records = c.normalize(ctx, fetched)
	c.selected = nil
	c.state.LoadError = ""
	c.setRecordsGauge()
	c.logger.InfoContext(ctx, "ncmrs loaded",
		"request_id", requestcontext.RequestID(ctx),
		"count", len(c.records),
	)
	return nil
}

// Create submits a draft and prepends the stored record. The draft is expected
// to have passed Draft.Validate. On failure the collection is unchanged and
// SubmitError is set; the caller keeps its draft for a retry.
func (c *Controller) Create(ctx context.Context, draft models.Draft) (_ models.Record, err error) {
	start := time.Now()
	defer func() { c.observe(opCreate, start, err) }()

	c.mu.Lock()
	c.state.Submitting = true
	if draft.NCMRNumber == "" && c.numberRule != models.NumberRuleID {
		draft.NCMRNumber = c.numberRule.Derive(models.NewRecord("", draft, time.Time{}), len(c.records)+1)
	}
	c.mu.Unlock()

	created, createErr := c.backend.Create(context.WithoutCancel(ctx), draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Submitting = false
	if createErr != nil {
		c.state.SubmitError = "failed to submit NCMR: " + createErr.Error()
		c.logger.ErrorContext(ctx, "failed to create ncmr",
			"request_id", requestcontext.RequestID(ctx),
			"part_number", draft.PartNumber,
			"error", createErr,
		)
		return models.Record{}, dErrors.Wrap(createErr, dErrors.CodeUnavailable, "failed to submit NCMR")
	}

	var record models.Record
	if created == nil || created.ID == "" {
		record = models.NewRecord(c.newID(), draft, requestcontext.Now(ctx))
	} else {
		record = c.normalizeOne(ctx, *created)
	}
	if record.NCMRNumber == "" {
		record.NCMRNumber = c.numberRule.Derive(record, len(c.records)+1)
	}

	// A backend that hands back an id we already hold replaces the stale copy.
	if idx := c.indexLocked(record.ID); idx >= 0 {
		c.records = append(c.records[:idx:idx], c.records[idx+1:]...)
	}
	c.records = append([]models.Record{record}, c.records...)
	c.state.SubmitError = ""
	c.setRecordsGauge()
	c.logger.InfoContext(ctx, "ncmr created",
		"request_id", requestcontext.RequestID(ctx),
		"id", record.ID,
		"ncmr_number", record.NCMRNumber,
	)
	return record, nil
}

// UpdateStatus applies the new status optimistically to the collection and to
// the selected copy, then confirms with the backend. A backend failure
// restores the exact pre-update snapshot and sets StatusError.
//
// Two in-flight updates to the same record race; the last response wins.
func (c *Controller) UpdateStatus(ctx context.Context, id string, status models.Status) (err error) {
	start := time.Now()
	defer func() { c.observe(opUpdateStatus, start, err) }()

	c.mu.Lock()
	if !status.IsValid() {
		c.state.StatusError = "invalid status: " + string(status)
		c.mu.Unlock()
		return dErrors.New(dErrors.CodeValidation, "invalid status: "+string(status))
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		c.state.StatusError = "NCMR " + id + " not found"
		c.mu.Unlock()
		return ErrNotFound
	}
	snap := c.snapshotLocked()
	c.records[idx].Status = status
	if c.selected != nil && c.selected.ID == id {
		sel := *c.selected
		sel.Status = status
		c.selected = &sel
	}
	c.state.StatusError = ""
	c.mu.Unlock()

	if updateErr := c.backend.UpdateStatus(context.WithoutCancel(ctx), id, status); updateErr != nil {
		c.mu.Lock()
		c.restoreLocked(snap)
		c.state.StatusError = "failed to update status: " + updateErr.Error()
		c.mu.Unlock()
		c.incrementRollbacks()
		c.logger.WarnContext(ctx, "status update rolled back",
			"request_id", requestcontext.RequestID(ctx),
			"id", id,
			"status", status,
			"error", updateErr,
		)
		return dErrors.Wrap(updateErr, dErrors.CodeUnavailable, "failed to update status")
	}

	c.logger.InfoContext(ctx, "ncmr status updated",
		"request_id", requestcontext.RequestID(ctx),
		"id", id,
		"status", status,
	)
	return nil
}

// Delete removes a record after confirm approves it. Returns false when the
// prompt was declined. Only backends implementing Deleter support it.
func (c *Controller) Delete(ctx context.Context, id string, confirm Confirmer) (_ bool, err error) {
	deleter, ok := c.backend.(Deleter)
	if !ok {
		return false, ErrDeleteUnsupported
	}
	if confirm == nil {
		return false, dErrors.New(dErrors.CodeBadRequest, "delete requires confirmation")
	}

	start := time.Now()
	defer func() { c.observe(opDelete, start, err) }()

	c.mu.RLock()
	idx := c.indexLocked(id)
	var target models.Record
	if idx >= 0 {
		target = c.records[idx]
	}
	c.mu.RUnlock()
	if idx < 0 {
		return false, ErrNotFound
	}

	// The prompt blocks; no lock may be held while it waits.
	if !confirm(target) {
		return false, nil
	}

	c.mu.Lock()
	idx = c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return false, ErrNotFound
	}
	snap := c.snapshotLocked()
	c.records = append(c.records[:idx:idx], c.records[idx+1:]...)
	if c.selected != nil && c.selected.ID == id {
		c.selected = nil
	}
	c.state.DeleteError = ""
	c.setRecordsGauge()
	c.mu.Unlock()

	if deleteErr := deleter.Delete(context.WithoutCancel(ctx), id); deleteErr != nil {
		c.mu.Lock()
		c.restoreLocked(snap)
		c.state.DeleteError = "failed to delete NCMR: " + deleteErr.Error()
		c.mu.Unlock()
		c.incrementRollbacks()
		c.logger.WarnContext(ctx, "delete rolled back",
			"request_id", requestcontext.RequestID(ctx),
			"id", id,
			"error", deleteErr,
		)
		return false, dErrors.Wrap(deleteErr, dErrors.CodeUnavailable, "failed to delete NCMR")
	}

	c.logger.InfoContext(ctx, "ncmr deleted",
		"request_id", requestcontext.RequestID(ctx),
		"id", id,
	)
	return true, nil
}

// normalize applies defaults, drops duplicate ids (first occurrence wins) and
// fills display numbers.
func (c *Controller) normalize(ctx context.Context, fetched []models.Record) []models.Record {
	out := make([]models.Record, 0, len(fetched))
	seen := make(map[string]struct{}, len(fetched))
	for _, r := range fetched {
		if _, dup := seen[r.ID]; dup {
			c.logger.WarnContext(ctx, "dropping duplicate ncmr id", "id", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, c.normalizeOne(ctx, r))
	}
	c.numberRule.ApplyNumbers(out)
	return out
}

func (c *Controller) normalizeOne(ctx context.Context, r models.Record) models.Record {
	if !r.Status.IsValid() {
		r.Status = models.StatusOpen
	}
	if !r.Severity.IsValid() {
		r.Severity = models.SeverityMinor
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = requestcontext.Now(ctx)
	}
	return r
}

func (c *Controller) observe(operation string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.ObserveOperation(operation, start, err)
	}
}

func (c *Controller) incrementRollbacks() {
	if c.metrics != nil {
		c.metrics.IncrementRollbacks()
	}
}

func (c *Controller) setRecordsGauge() {
	if c.metrics != nil {
		c.metrics.SetRecords(len(c.records))
	}
}
