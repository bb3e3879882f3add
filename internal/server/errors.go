package server

import (
	"net/http"

	"github.com/goccy/go-json"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	Status    int         `json:"status"`
	Path      string      `json:"path,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorDetail describes what went wrong
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:     ErrorDetail{Code: code, Message: message},
		Status:    status,
		Path:      r.URL.Path,
		RequestID: GetRequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
