package util

import (
	"net/http"
	"strings"
)

// DetectMIME sniffs the content type from the first bytes of an upload.
func DetectMIME(head []byte) string {
	if len(head) > 512 {
		head = head[:512]
	}
	mimeType := http.DetectContentType(head)
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return strings.TrimSpace(mimeType)
}

func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// IsDecodableImageMIME lists the image types whose headers are validated on upload.
func IsDecodableImageMIME(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

// IsAttachmentMIME reports whether certificates and photos of this type may be stored.
func IsAttachmentMIME(mimeType string) bool {
	return IsDecodableImageMIME(mimeType) || strings.EqualFold(strings.TrimSpace(mimeType), "application/pdf")
}

func IsImageExtension(extension string) bool {
	switch strings.ToLower(strings.TrimSpace(extension)) {
	case ".png", ".jpg", ".jpeg", ".jpe", ".jfif", ".gif", ".webp":
		return true
	default:
		return false
	}
}
