package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-parish-admin/internal/model"
	"go-parish-admin/internal/service"
)

type TrashHandler struct {
	service *service.LifecycleService
}

func NewTrashHandler(service *service.LifecycleService) *TrashHandler {
	return &TrashHandler{service: service}
}

func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListTrash(r.Context(), strings.TrimSpace(r.URL.Query().Get("table")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.TrashListData{Items: items}, nil)
}

func (h *TrashHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetTrashEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entry, nil)
}

func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req model.RestoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	restored, err := h.service.Restore(r.Context(), chi.URLParam(r, "id"), model.RestoreOptions{
		FieldOverrides: req.FieldOverrides,
		Cascade:        req.Cascade,
	}, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, restored, nil)
}

// Purge permanently removes the trash entry and the objects its snapshot owns. Objects that
// could not be removed are listed in the response rather than failing the request.
func (h *TrashHandler) Purge(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Purge(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}
