package middleware

import (
	"encoding/json"
	"net/http"

	"go-parish-admin/internal/model"
)

// errorEnvelope is the failure body handlers also produce, so clients parse one shape
// whether the request was rejected here or further down the chain.
func errorEnvelope(code string, message string) model.APIResponse {
	return model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope(code, message))
}
