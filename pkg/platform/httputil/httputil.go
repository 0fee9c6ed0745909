// Package httputil holds the JSON response and request helpers shared by the
// HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "ncmr/pkg/domain-errors"
	"ncmr/pkg/platform/sentinel"
)

const maxBodyBytes = 1 << 20

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the JSON error envelope. Internal errors
// never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := CodeFor(err)
	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal && code != dErrors.CodeConfig {
		body["error_description"] = describe(err)
	}
	WriteJSON(w, StatusFor(code), body)
}

// CodeFor resolves the domain code, mapping bare sentinel errors.
func CodeFor(err error) dErrors.Code {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Code
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.CodeNotFound
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.CodeUnavailable
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.CodeBadRequest
	}
	return dErrors.CodeInternal
}

func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnsupported:
		return http.StatusMethodNotAllowed
	case dErrors.CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func describe(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Error()
	}
	return err.Error()
}

// DecodeJSON reads a size-limited JSON body into T. Unknown fields are
// rejected.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request) (*T, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	var v T
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return &v, nil
}
