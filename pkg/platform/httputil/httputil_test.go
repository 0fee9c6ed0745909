package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ncmr/pkg/domain-errors"
	"ncmr/pkg/platform/sentinel"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "bad_request", body["error"])
		assert.Equal(t, "invalid input", body["error_description"])
	})

	t.Run("unavailable carries the upstream message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(fmt.Errorf("list: HTTP 502: sheet down"), dErrors.CodeUnavailable, "failed to load NCMRs"))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "failed to load NCMRs: list: HTTP 502: sheet down", decodeBody(t, w)["error_description"])
	})

	t.Run("sentinel not found maps to 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("ncmr 7: %w", sentinel.ErrNotFound))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unsupported maps to 405", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeUnsupported, "delete is not supported"))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Status string `json:"status"`
	}

	t.Run("decodes", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"closed"}`))
		got, err := DecodeJSON[payload](httptest.NewRecorder(), r)
		require.NoError(t, err)
		assert.Equal(t, "closed", got.Status)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(""))
		_, err := DecodeJSON[payload](httptest.NewRecorder(), r)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"state":"closed"}`))
		_, err := DecodeJSON[payload](httptest.NewRecorder(), r)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
