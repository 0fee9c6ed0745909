package controller

import (
	"slices"

	"ncmr/internal/ncmr/models"
)

// snapshot is an immutable copy of everything an optimistic mutation touches.
// Records are plain values, so a slice clone is a deep copy.
type snapshot struct {
	records  []models.Record
	selected *models.Record
}

func (c *Controller) snapshotLocked() snapshot {
	s := snapshot{records: cloneRecords(c.records)}
	if c.selected != nil {
		sel := *c.selected
		s.selected = &sel
	}
	return s
}

func (c *Controller) restoreLocked(s snapshot) {
	c.records = s.records
	c.selected = s.selected
	c.setRecordsGauge()
}

func cloneRecords(records []models.Record) []models.Record {
	if records == nil {
		return nil
	}
	return slices.Clone(records)
}
