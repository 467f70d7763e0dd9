package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-parish-admin/internal/model"
	"go-parish-admin/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	var lifecycleErr *model.LifecycleError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.As(err, &lifecycleErr) && lifecycleErr.Partial() {
		status = http.StatusConflict
		body.Code = "PARTIALLY_APPLIED"
		body.Message = fmt.Sprintf("%s stopped at step %q after committing %s",
			lifecycleErr.Operation, lifecycleErr.Step, strings.Join(lifecycleErr.Completed, ", "))
		body.Details = err.Error()
		slog.Error("lifecycle operation partially applied", "error", err.Error(), "pending_id", lifecycleErr.PendingID)
	} else if errors.Is(err, model.ErrCascadeResolution) {
		status = http.StatusUnprocessableEntity
		body.Code = "CASCADE_RESOLUTION_FAILED"
		body.Message = "Linked sacrament document could not be resolved"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrTrashEntryNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Trash entry not found"
	} else if errors.Is(err, model.ErrPendingOperationNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Pending operation not found"
	} else if errors.Is(err, model.ErrRecordNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Record not found"
	} else if errors.Is(err, model.ErrNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Resource not found"
	} else if errors.Is(err, model.ErrUnknownTable) {
		status = http.StatusNotFound
		body.Code = "UNKNOWN_TABLE"
		body.Message = "Table is not managed by this service"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrStorage) {
		status = http.StatusBadGateway
		body.Code = "STORAGE_ERROR"
		body.Message = "Object storage request failed"
		slog.Error("object storage failure", "error", err.Error())
	} else if errors.Is(err, model.ErrAuditWrite) {
		body.Code = "AUDIT_WRITE_FAILED"
		body.Message = "Audit entry could not be written"
		slog.Error("audit write failure", "error", err.Error())
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

// decodeJSON reads an optional JSON body into dst. Numbers stay json.Number so integer ids
// survive the trip into the record store.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apierror.BadRequest("invalid JSON body", err.Error())
	}
	return nil
}

func recordIDParam(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("record id must be a positive integer", raw)
	}
	return id, nil
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
