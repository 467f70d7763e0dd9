package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"go-parish-admin/internal/catalog"
	"go-parish-admin/internal/model"
	"go-parish-admin/internal/storage"
	"go-parish-admin/internal/util"
)

// AttachmentService stores certificate scans and photos for declared attachment fields.
// The returned URL is what callers write into the field.
type AttachmentService struct {
	registry *catalog.Registry
	objects  storage.ObjectStore
	maxSize  int64
}

const defaultMaxAttachmentSize = 10 << 20

func NewAttachmentService(registry *catalog.Registry, objects storage.ObjectStore, maxSize int64) *AttachmentService {
	if maxSize <= 0 {
		maxSize = defaultMaxAttachmentSize
	}
	return &AttachmentService{registry: registry, objects: objects, maxSize: maxSize}
}

func (s *AttachmentService) MaxSize() int64 {
	return s.maxSize
}

func (s *AttachmentService) Upload(ctx context.Context, table string, field string, filename string, body io.Reader, actor model.Actor) (model.AttachmentUpload, error) {
	descriptor, err := s.registry.Lookup(table)
	if err != nil {
		return model.AttachmentUpload{}, err
	}

	attachment, ok := descriptor.Attachment(field)
	if !ok {
		return model.AttachmentUpload{}, fmt.Errorf("%w: %s has no attachment field %q", model.ErrInvalidInput, table, field)
	}

	name, err := util.ObjectName(filename)
	if err != nil {
		return model.AttachmentUpload{}, err
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxSize+1))
	if err != nil {
		return model.AttachmentUpload{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return model.AttachmentUpload{}, fmt.Errorf("%w: upload is empty", model.ErrInvalidInput)
	}
	if int64(len(data)) > s.maxSize {
		return model.AttachmentUpload{}, fmt.Errorf("%w: upload exceeds %d bytes", model.ErrInvalidInput, s.maxSize)
	}

	mimeType := util.DetectMIME(data)
	if !util.IsAttachmentMIME(mimeType) {
		return model.AttachmentUpload{}, fmt.Errorf("%w: content type %s is not accepted", model.ErrInvalidInput, mimeType)
	}

	upload := model.AttachmentUpload{
		Table:    table,
		Field:    field,
		Bucket:   attachment.Bucket,
		Path:     path.Join(table, uuid.NewString()+"_"+name),
		Size:     int64(len(data)),
		MimeType: mimeType,
	}

	if util.IsImageMIME(mimeType) {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return model.AttachmentUpload{}, fmt.Errorf("%w: image cannot be decoded: %v", model.ErrInvalidInput, err)
		}
		upload.Width, upload.Height = cfg.Width, cfg.Height
	}

	url, err := s.objects.Upload(ctx, upload.Bucket, upload.Path, bytes.NewReader(data), mimeType)
	if err != nil {
		return model.AttachmentUpload{}, err
	}
	upload.URL = url

	slog.Info("attachment stored", "table", table, "field", field, "bucket", upload.Bucket,
		"path", upload.Path, "size", upload.Size, "mime", mimeType, "actor", actor.Email)

	return upload, nil
}
