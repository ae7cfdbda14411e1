package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteError writes an ErrorBody. code is a stable machine-readable label
// such as "ACCOUNT_LOCKED".
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Status:    status,
		Error:     code,
		Message:   msg,
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC(),
	})
}
