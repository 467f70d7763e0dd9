package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-parish-admin/internal/catalog"
	"go-parish-admin/internal/model"
	"go-parish-admin/internal/storage"
)

func pngBytes(t *testing.T, width int, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAttachmentUploadStoresImage(t *testing.T) {
	t.Parallel()

	objects := &storage.MockObjectStore{}
	svc := NewAttachmentService(catalog.Default(), objects, 1<<20)

	objects.On("Upload", mock.Anything, "certificates",
		mock.MatchedBy(func(p string) bool {
			return strings.HasPrefix(p, catalog.WeddingDocumentTable+"/") && strings.HasSuffix(p, "_Groom_Photo.png")
		}),
		mock.Anything, "image/png",
	).Return(storage.MockPublicBase+"/certificates/stored.png", nil).Once()

	upload, err := svc.Upload(context.Background(), catalog.WeddingDocumentTable, "groom_1x1",
		"Groom Photo.PNG", bytes.NewReader(pngBytes(t, 2, 3)), clerk)
	require.NoError(t, err)

	assert.Equal(t, "certificates", upload.Bucket)
	assert.Equal(t, storage.MockPublicBase+"/certificates/stored.png", upload.URL)
	assert.Equal(t, "image/png", upload.MimeType)
	assert.Equal(t, 2, upload.Width)
	assert.Equal(t, 3, upload.Height)
	objects.AssertExpectations(t)
}

func TestAttachmentUploadRejections(t *testing.T) {
	t.Parallel()

	objects := &storage.MockObjectStore{}
	svc := NewAttachmentService(catalog.Default(), objects, 64)
	ctx := context.Background()

	tests := []struct {
		name    string
		table   string
		field   string
		file    string
		body    []byte
		wantErr error
	}{
		{name: "unknown table", table: "users", field: "avatar", file: "a.png", body: []byte("x"), wantErr: model.ErrUnknownTable},
		{name: "undeclared field", table: "event_tbl", field: "title", file: "a.png", body: []byte("x"), wantErr: model.ErrInvalidInput},
		{name: "empty upload", table: "event_tbl", field: "image", file: "a.png", body: nil, wantErr: model.ErrInvalidInput},
		{name: "too large", table: "event_tbl", field: "image", file: "a.png", body: bytes.Repeat([]byte("a"), 65), wantErr: model.ErrInvalidInput},
		{name: "plain text", table: "event_tbl", field: "image", file: "a.png", body: []byte("not an image"), wantErr: model.ErrInvalidInput},
		{name: "truncated png", table: "event_tbl", field: "image", file: "a.png", body: []byte("\x89PNG\r\n\x1a\n\x00\x00"), wantErr: model.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.table, tt.field, tt.file, bytes.NewReader(tt.body), clerk)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := svc.Upload(ctx, "event_tbl", "image", ".hidden", bytes.NewReader([]byte("x")), clerk)
	require.Error(t, err)

	objects.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
