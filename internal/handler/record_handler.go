package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-parish-admin/internal/model"
	"go-parish-admin/internal/service"
)

type RecordHandler struct {
	records   *service.RecordService
	lifecycle *service.LifecycleService
}

func NewRecordHandler(records *service.RecordService, lifecycle *service.LifecycleService) *RecordHandler {
	return &RecordHandler{records: records, lifecycle: lifecycle}
}

// List returns rows of a table. Every query parameter except limit is an equality filter.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := map[string]any{}
	for key, values := range query {
		if key == "limit" || len(values) == 0 {
			continue
		}
		filter[key] = values[0]
	}

	items, err := h.records.List(r.Context(), chi.URLParam(r, "table"), model.RecordQuery{
		Filter: filter,
		Limit:  parseIntOrDefault(query.Get("limit"), 100),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.RecordListData{Items: items}, nil)
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := recordIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.records.Get(r.Context(), chi.URLParam(r, "table"), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, record, nil)
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.UpsertRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	record, err := h.records.Create(r.Context(), chi.URLParam(r, "table"), req.Fields, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, record, nil)
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := recordIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.UpsertRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	record, err := h.records.Update(r.Context(), chi.URLParam(r, "table"), id, req.Fields, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, record, nil)
}

// Delete moves the row to the trash.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := recordIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.SoftDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.lifecycle.SoftDelete(r.Context(), chi.URLParam(r, "table"), id, strings.TrimSpace(req.Reason), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entry, nil)
}
