package handler

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-parish-admin/internal/storage"
	"go-parish-admin/internal/util"
)

// FilesHandler serves objects from the local object store under their public URLs.
type FilesHandler struct {
	store *storage.LocalStore
}

func NewFilesHandler(store *storage.LocalStore) *FilesHandler {
	return &FilesHandler{store: store}
}

func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	objectPath := strings.TrimPrefix(chi.URLParam(r, "*"), "/")

	file, info, err := h.store.Open(bucket, objectPath)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	extension := strings.ToLower(path.Ext(objectPath))
	if util.IsImageExtension(extension) || extension == ".pdf" {
		w.Header().Set("Content-Disposition", "inline")
	} else {
		w.Header().Set("Content-Disposition", "attachment")
	}
	w.Header().Set("Cache-Control", "private, max-age=300")

	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
