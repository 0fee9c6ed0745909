package controller

import (
	"iter"
	"slices"

	"ncmr/internal/ncmr/models"
)

// Query yields the records matching f in collection order. The sequence is
// lazy and restartable: every iteration reads the collection as it is when
// the iteration starts, and nothing is cached between calls.
func (c *Controller) Query(f models.Filter) iter.Seq[models.Record] {
	return func(yield func(models.Record) bool) {
		for _, r := range c.Records() {
			if !f.Matches(r) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// QueryAll collects Query into a slice.
func (c *Controller) QueryAll(f models.Filter) []models.Record {
	return slices.Collect(c.Query(f))
}
