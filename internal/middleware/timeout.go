package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds non-streaming API requests. The lifecycle steps carry their own
// deadlines, so this only catches handlers stuck outside them.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	message, err := json.Marshal(errorEnvelope("REQUEST_TIMEOUT", "request timed out"))
	if err != nil {
		message = []byte(`{"success":false}`)
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(message))
	}
}
