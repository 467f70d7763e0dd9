package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectMIME(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	require.Equal(t, "image/png", DetectMIME(png))
	require.Equal(t, "application/pdf", DetectMIME([]byte("%PDF-1.7\n%âãÏÓ")))
	require.Equal(t, "text/plain", DetectMIME([]byte("hello parish")))
}

func TestIsAttachmentMIME(t *testing.T) {
	t.Parallel()

	require.True(t, IsAttachmentMIME("image/png"))
	require.True(t, IsAttachmentMIME(" IMAGE/WEBP "))
	require.True(t, IsAttachmentMIME("application/pdf"))
	require.False(t, IsAttachmentMIME("image/svg+xml"))
	require.False(t, IsAttachmentMIME("text/html"))
}

func TestIsImageExtension(t *testing.T) {
	t.Parallel()

	require.True(t, IsImageExtension(".png"))
	require.True(t, IsImageExtension(" .JPEG "))
	require.True(t, IsImageExtension(".webp"))
	require.False(t, IsImageExtension(".pdf"))
	require.False(t, IsImageExtension(""))
	require.True(t, IsImageMIME("image/gif"))
}
