package handler

import (
	"net/http"
	"strconv"
	"strings"

	"go-parish-admin/internal/model"
	"go-parish-admin/internal/service"
	"go-parish-admin/pkg/apierror"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var recordID int64
	if raw := strings.TrimSpace(query.Get("record_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, apierror.BadRequest("record_id must be an integer", raw))
			return
		}
		recordID = parsed
	}

	items, meta, err := h.service.Query(r.Context(), model.AuditQuery{
		Table:    strings.TrimSpace(query.Get("table")),
		Action:   strings.TrimSpace(query.Get("action")),
		RecordID: recordID,
		Actor:    strings.TrimSpace(query.Get("actor")),
		From:     strings.TrimSpace(query.Get("from")),
		To:       strings.TrimSpace(query.Get("to")),
		Page:     parseIntOrDefault(query.Get("page"), 1),
		Limit:    parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.AuditListData{Items: items}, &meta)
}
