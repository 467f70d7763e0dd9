package util

import (
	"net/http"
	"path"
	"regexp"
	"strings"
	"unicode"

	"go-parish-admin/internal/model"
	"go-parish-admin/pkg/apierror"
)

const maxObjectNameRunes = 120

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*#%&{}$!'@+=` + "`" + `]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// ObjectName turns an uploaded filename into a safe, URL-friendly object name. Whitespace
// and reserved characters become underscores and the extension is lower-cased.
func ObjectName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", invalidName("filename cannot be empty", "")
	}
	if strings.Contains(trimmed, "\x00") {
		return "", invalidName("filename contains null bytes", trimmed)
	}

	var builder strings.Builder
	builder.Grow(len(trimmed))
	for _, char := range trimmed {
		if unicode.IsControl(char) || isInvisible(char) {
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := invalidNameChars.ReplaceAllString(builder.String(), "_")
	cleaned = whitespaceRuns.ReplaceAllString(strings.TrimSpace(cleaned), "_")
	if cleaned == "" || strings.Trim(cleaned, "._") == "" {
		return "", invalidName("filename is invalid after sanitization", trimmed)
	}
	if strings.HasPrefix(cleaned, ".") {
		return "", invalidName("hidden filenames are not allowed", cleaned)
	}

	ext := strings.ToLower(path.Ext(cleaned))
	stem := strings.TrimSuffix(cleaned, path.Ext(cleaned))

	if _, reserved := reservedNames[strings.ToUpper(stem)]; reserved {
		return "", invalidName("reserved filename is not allowed", cleaned)
	}

	// Truncate the stem by runes so multi-byte characters survive and the extension is kept.
	if budget := maxObjectNameRunes - len([]rune(ext)); len([]rune(stem)) > budget {
		stem = string([]rune(stem)[:budget])
	}

	return stem + ext, nil
}

func invalidName(message string, details string) error {
	return apierror.Wrap(model.ErrInvalidInput, "INVALID_FILENAME", message, details, http.StatusBadRequest)
}

// isInvisible reports zero-width and other format characters.
func isInvisible(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u200E', '\u200F',
		'\u2060', '\u2061', '\u2062', '\u2063', '\u2064',
		'\uFEFF', '\uFFF9', '\uFFFA', '\uFFFB':
		return true
	}
	return unicode.Is(unicode.Cf, r)
}
