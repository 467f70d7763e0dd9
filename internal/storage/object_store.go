package storage

import (
	"context"
	"io"
	"net/url"
	"strings"

	"go-parish-admin/internal/model"
)

// ObjectStore holds attachment blobs addressed by bucket and object path.
type ObjectStore interface {
	Upload(ctx context.Context, bucket string, objectPath string, body io.Reader, contentType string) (string, error)
	// Remove deletes every path in bucket. Paths that are already gone are not an error.
	Remove(ctx context.Context, bucket string, paths []string) error
	PublicURL(bucket string, objectPath string) string
	ParsePublicURL(raw string) (model.StorageRef, bool)
}

// urlLayout renders and parses public URLs of the form <base>/<bucket>/<path>.
type urlLayout struct {
	base string
}

func newURLLayout(base string) urlLayout {
	return urlLayout{base: strings.TrimRight(strings.TrimSpace(base), "/")}
}

func (l urlLayout) publicURL(bucket string, objectPath string) string {
	segments := strings.Split(strings.TrimPrefix(objectPath, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return l.base + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func (l urlLayout) parse(raw string) (model.StorageRef, bool) {
	trimmed := strings.TrimSpace(raw)
	if l.base == "" || !strings.HasPrefix(trimmed, l.base+"/") {
		return model.StorageRef{}, false
	}

	rest := strings.TrimPrefix(trimmed, l.base+"/")
	if idx := strings.IndexAny(rest, "?#"); idx >= 0 {
		rest = rest[:idx]
	}

	bucket, objectPath, found := strings.Cut(rest, "/")
	if !found {
		return model.StorageRef{}, false
	}

	bucket, err := url.PathUnescape(bucket)
	if err != nil || !validBucket(bucket) {
		return model.StorageRef{}, false
	}
	objectPath, err = url.PathUnescape(objectPath)
	if err != nil || !validObjectPath(objectPath) {
		return model.StorageRef{}, false
	}

	return model.StorageRef{Bucket: bucket, Path: objectPath, OriginalURL: trimmed}, true
}

func validBucket(bucket string) bool {
	if bucket == "" || bucket == "." || bucket == ".." {
		return false
	}
	return !strings.ContainsAny(bucket, `/\`)
}

func validObjectPath(objectPath string) bool {
	if strings.TrimSpace(objectPath) == "" || strings.HasSuffix(objectPath, "/") {
		return false
	}
	for _, segment := range strings.Split(objectPath, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
	}
	return true
}
