package models

import (
	"strings"

	dErrors "ncmr/pkg/domain-errors"
)

// StatusFilter is either "all" or a concrete Status.
type StatusFilter string

const StatusFilterAll StatusFilter = "all"

// ParseStatusFilter treats an empty value as "all".
func ParseStatusFilter(raw string) (StatusFilter, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, string(StatusFilterAll)) {
		return StatusFilterAll, nil
	}
	s, err := ParseStatus(trimmed)
	if err != nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid status filter: "+raw)
	}
	return StatusFilter(s), nil
}

// Filter selects records for the list view.
type Filter struct {
	Search string
	Status StatusFilter
}

// Matches reports whether r satisfies both the search term and the status
// filter. The search term is a case-insensitive substring of the NCMR number,
// part number, part name or supplier.
func (f Filter) Matches(r Record) bool {
	if f.Status != "" && f.Status != StatusFilterAll && Status(f.Status) != r.Status {
		return false
	}
	term := strings.ToLower(f.Search)
	if term == "" {
		return true
	}
	for _, field := range []string{r.NCMRNumber, r.PartNumber, r.PartName, r.Supplier} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Summary holds the dashboard counters.
//
// Invariant: Open + InProgress + Closed == Total.
type Summary struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
}

// Summarize counts records per status.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusOpen:
			s.Open++
		case StatusInProgress:
			s.InProgress++
		case StatusClosed:
			s.Closed++
		}
	}
	return s
}
