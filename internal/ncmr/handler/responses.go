package handler

import (
	"ncmr/internal/ncmr/controller"
	"ncmr/internal/ncmr/models"
)

type ListResponse struct {
	Data  []models.Record `json:"data"`
	Total int             `json:"total"`
}

func newListResponse(records []models.Record) ListResponse {
	if records == nil {
		records = []models.Record{}
	}
	return ListResponse{Data: records, Total: len(records)}
}

// StateResponse adds capability flags to the controller state.
type StateResponse struct {
	controller.State
	CanDelete bool `json:"canDelete"`
}
