package handler

import (
	"encoding/json"
	"strings"

	"ncmr/internal/ncmr/models"
	dErrors "ncmr/pkg/domain-errors"
)

// CreateRequest is the body of POST /ncmrs. Quantity accepts a JSON number or
// a numeric string, the way form fields arrive.
type CreateRequest struct {
	PartNumber        string      `json:"partNumber"`
	PartName          string      `json:"partName"`
	Quantity          json.Number `json:"quantity"`
	LotNumber         string      `json:"lotNumber"`
	Supplier          string      `json:"supplier"`
	Severity          string      `json:"severity"`
	ReportedBy        string      `json:"reportedBy"`
	Department        string      `json:"department"`
	DefectDescription string      `json:"defectDescription"`
	DispositionAction string      `json:"dispositionAction"`
}

// Draft converts and validates the request.
func (r *CreateRequest) Draft() (models.Draft, error) {
	if r == nil {
		return models.Draft{}, dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	quantity, err := r.Quantity.Int64()
	if err != nil {
		return models.Draft{}, dErrors.New(dErrors.CodeValidation, "quantity must be a positive number")
	}
	severity, err := models.ParseSeverity(r.Severity)
	if err != nil {
		return models.Draft{}, err
	}
	d := models.Draft{
		PartNumber:        strings.TrimSpace(r.PartNumber),
		PartName:          strings.TrimSpace(r.PartName),
		Quantity:          int(quantity),
		LotNumber:         strings.TrimSpace(r.LotNumber),
		Supplier:          strings.TrimSpace(r.Supplier),
		Severity:          severity,
		ReportedBy:        strings.TrimSpace(r.ReportedBy),
		Department:        strings.TrimSpace(r.Department),
		DefectDescription: strings.TrimSpace(r.DefectDescription),
		DispositionAction: strings.TrimSpace(r.DispositionAction),
	}
	if err := d.Validate(); err != nil {
		return models.Draft{}, err
	}
	return d, nil
}

// StatusRequest is the body of PUT /ncmrs/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}
