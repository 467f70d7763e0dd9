package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-parish-admin/internal/model"
	"go-parish-admin/pkg/apierror"
)

func TestWriteErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", apierror.New("PAYLOAD_TOO_LARGE", "too big", "", http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"partial lifecycle", &model.LifecycleError{Operation: "soft_delete", Step: "delete", Completed: []string{"stash"}, Err: errors.New("boom")}, http.StatusConflict, "PARTIALLY_APPLIED"},
		{"lifecycle before commit", &model.LifecycleError{Operation: "soft_delete", Step: "read", Err: model.ErrRecordNotFound}, http.StatusNotFound, "NOT_FOUND"},
		{"cascade", fmt.Errorf("%w: wedding doc 9 missing", model.ErrCascadeResolution), http.StatusUnprocessableEntity, "CASCADE_RESOLUTION_FAILED"},
		{"unknown table", fmt.Errorf("%w: %q", model.ErrUnknownTable, "users"), http.StatusNotFound, "UNKNOWN_TABLE"},
		{"object not found", fmt.Errorf("object %w", model.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"invalid input", fmt.Errorf("%w: empty patch", model.ErrInvalidInput), http.StatusBadRequest, "BAD_REQUEST"},
		{"storage", fmt.Errorf("%w: bucket offline", model.ErrStorage), http.StatusBadGateway, "STORAGE_ERROR"},
		{"audit", fmt.Errorf("%w: db closed", model.ErrAuditWrite), http.StatusInternalServerError, "AUDIT_WRITE_FAILED"},
		{"forbidden", model.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unclassified", errors.New("mystery"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body model.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestDecodeJSONKeepsIntegers(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Body = http.NoBody
	var empty model.RestoreRequest
	require.NoError(t, decodeJSON(req, &empty))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"field_overrides":{"wedding_docu_id":9007199254740993}}`))
	var parsed model.RestoreRequest
	require.NoError(t, decodeJSON(req, &parsed))
	assert.Equal(t, json.Number("9007199254740993"), parsed.FieldOverrides["wedding_docu_id"])
}
