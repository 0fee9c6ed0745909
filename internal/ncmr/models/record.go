package models

import (
	"strings"
	"time"

	dErrors "ncmr/pkg/domain-errors"
)

// Status is the lifecycle state of an NCMR.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusClosed     Status = "closed"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed}

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts the canonical spelling plus a few forms seen from older
// clients ("in_progress", "In Progress").
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("_", "-", " ", "-").Replace(normalized)
	s := Status(normalized)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid status: "+raw)
	}
	return s, nil
}

// Severity grades how serious the nonconformance is.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityMinor, SeverityMajor, SeverityCritical:
		return true
	}
	return false
}

// ParseSeverity defaults to minor for empty input.
func ParseSeverity(raw string) (Severity, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return SeverityMinor, nil
	}
	s := Severity(normalized)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid severity: "+raw)
	}
	return s, nil
}

// Record is a Non-Conformance Material Report.
//
// Invariants:
//   - Status is one of open, in-progress, closed
//   - ID is unique within a collection
//   - only Status changes after creation
type Record struct {
	ID                string    `json:"id"`
	NCMRNumber        string    `json:"ncmrNumber"`
	PartNumber        string    `json:"partNumber"`
	PartName          string    `json:"partName"`
	Quantity          int       `json:"quantity"`
	LotNumber         string    `json:"lotNumber"`
	Supplier          string    `json:"supplier"`
	Severity          Severity  `json:"severity"`
	ReportedBy        string    `json:"reportedBy"`
	Department        string    `json:"department"`
	DefectDescription string    `json:"defectDescription"`
	DispositionAction string    `json:"dispositionAction"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Draft is the candidate for a new record. NCMRNumber is only honored by
// backends that number records themselves.
type Draft struct {
	NCMRNumber        string   `json:"-"`
	PartNumber        string   `json:"partNumber"`
	PartName          string   `json:"partName"`
	Quantity          int      `json:"quantity"`
	LotNumber         string   `json:"lotNumber"`
	Supplier          string   `json:"supplier"`
	Severity          Severity `json:"severity"`
	ReportedBy        string   `json:"reportedBy"`
	Department        string   `json:"department"`
	DefectDescription string   `json:"defectDescription"`
	DispositionAction string   `json:"dispositionAction"`
}

// Validate enforces required fields. Presentation layers call it before
// submitting; the controller trusts its input.
func (d Draft) Validate() error {
	switch {
	case strings.TrimSpace(d.PartNumber) == "":
		return dErrors.New(dErrors.CodeValidation, "partNumber is required")
	case strings.TrimSpace(d.PartName) == "":
		return dErrors.New(dErrors.CodeValidation, "partName is required")
	case d.Quantity <= 0:
		return dErrors.New(dErrors.CodeValidation, "quantity must be a positive number")
	case strings.TrimSpace(d.DefectDescription) == "":
		return dErrors.New(dErrors.CodeValidation, "defectDescription is required")
	}
	if d.Severity != "" && !d.Severity.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid severity: "+string(d.Severity))
	}
	return nil
}

// NewRecord builds an open record from a draft.
func NewRecord(id string, d Draft, now time.Time) Record {
	severity := d.Severity
	if severity == "" {
		severity = SeverityMinor
	}
	return Record{
		ID:                id,
		NCMRNumber:        d.NCMRNumber,
		PartNumber:        d.PartNumber,
		PartName:          d.PartName,
		Quantity:          d.Quantity,
		LotNumber:         d.LotNumber,
		Supplier:          d.Supplier,
		Severity:          severity,
		ReportedBy:        d.ReportedBy,
		Department:        d.Department,
		DefectDescription: d.DefectDescription,
		DispositionAction: d.DispositionAction,
		Status:            StatusOpen,
		CreatedAt:         now,
	}
}
