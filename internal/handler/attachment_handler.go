package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"go-parish-admin/internal/service"
	"go-parish-admin/pkg/apierror"
)

const multipartOverhead = 1 << 20

type AttachmentHandler struct {
	service *service.AttachmentService
}

func NewAttachmentHandler(service *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// Upload accepts a multipart body with table and field parts followed by a single file part.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxSize()+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, apierror.BadRequest("invalid multipart body", ""))
		return
	}

	var table, field string
	for {
		part, nextErr := reader.NextPart()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			if isPayloadTooLarge(nextErr) {
				writeError(w, payloadTooLarge())
				return
			}
			writeError(w, apierror.BadRequest("invalid multipart stream", nextErr.Error()))
			return
		}

		switch part.FormName() {
		case "table":
			table = readFormValue(part)
			continue
		case "field":
			field = readFormValue(part)
			continue
		case "file":
		default:
			_ = part.Close()
			continue
		}

		if table == "" || field == "" {
			_ = part.Close()
			writeError(w, apierror.BadRequest("table and field must precede the file part", ""))
			return
		}

		uploaded, uploadErr := h.service.Upload(r.Context(), table, field, part.FileName(), part, actorFromRequest(r))
		_ = part.Close()
		if uploadErr != nil {
			if isPayloadTooLarge(uploadErr) {
				writeError(w, payloadTooLarge())
				return
			}
			writeError(w, uploadErr)
			return
		}

		writeSuccess(w, http.StatusCreated, uploaded, nil)
		return
	}

	writeError(w, apierror.BadRequest("file part is required", ""))
}

func readFormValue(part io.ReadCloser) string {
	defer part.Close()
	value, _ := io.ReadAll(io.LimitReader(part, 256))
	return strings.TrimSpace(string(value))
}

func payloadTooLarge() error {
	return apierror.New("PAYLOAD_TOO_LARGE", "request body exceeds MAX_UPLOAD_SIZE", "MAX_UPLOAD_SIZE", http.StatusRequestEntityTooLarge)
}

func isPayloadTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "request body too large")
}
