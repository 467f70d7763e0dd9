package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-parish-admin/internal/model"
	"go-parish-admin/internal/service"
)

type PendingHandler struct {
	service *service.PendingService
}

func NewPendingHandler(service *service.PendingService) *PendingHandler {
	return &PendingHandler{service: service}
}

func (h *PendingHandler) List(w http.ResponseWriter, r *http.Request) {
	includeResolved, _ := strconv.ParseBool(r.URL.Query().Get("include_resolved"))

	items, err := h.service.List(r.Context(), includeResolved)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.PendingListData{Items: items}, nil)
}

func (h *PendingHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	op, err := h.service.Resolve(r.Context(), chi.URLParam(r, "id"), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, op, nil)
}
