package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"go-parish-admin/internal/model"
)

// PathValidator confines bucket/object paths to a single filesystem root.
type PathValidator struct {
	rootAbs string
}

func NewPathValidator(root string) (*PathValidator, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("object store root cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve object store root: %w", err)
	}

	return &PathValidator{rootAbs: rootAbs}, nil
}

func (v *PathValidator) RootAbs() string {
	return v.rootAbs
}

func (v *PathValidator) ResolvePath(objectKey string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(objectKey), `\`, "/")
	if normalized == "" || normalized == "/" {
		return "", fmt.Errorf("%w: object key is empty", model.ErrInvalidInput)
	}

	if strings.Contains(normalized, "\x00") || hasControlCharacters(normalized) {
		return "", fmt.Errorf("%w: object key contains invalid characters", model.ErrInvalidInput)
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: object key escapes the store root: %q", model.ErrForbidden, objectKey)
		}
	}

	cleanRel := filepath.Clean(strings.TrimPrefix(normalized, "/"))
	if cleanRel == "." {
		return "", fmt.Errorf("%w: object key is empty", model.ErrInvalidInput)
	}

	resolvedAbs, err := filepath.Abs(filepath.Join(v.rootAbs, cleanRel))
	if err != nil {
		return "", fmt.Errorf("resolve object key: %w", err)
	}

	if !isWithinRoot(v.rootAbs, resolvedAbs) {
		return "", fmt.Errorf("%w: object key escapes the store root: %q", model.ErrForbidden, objectKey)
	}

	return resolvedAbs, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	if candidateAbs == rootAbs {
		return true
	}
	return strings.HasPrefix(candidateAbs, rootAbs+string(filepath.Separator))
}
