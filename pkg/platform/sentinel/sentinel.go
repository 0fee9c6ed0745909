package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Key-value stores and backends return
// these (optionally wrapped) so the controller and handlers can translate them
// into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: key or record does not exist in the backing store
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: backing store or record service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
