package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"yunion.io/x/log"

	"github.com/zexi/garage-status/pkg/status"
)

const (
	msgBodyRequired     = "Request body required"
	msgMethodNotAllowed = "Method not allowed"
	msgNotFound         = "Not found"
	prefixDatabaseError = "Database error: "
	prefixInvalidBody   = "Invalid request body: "
)

// StatusService is what every controller calls into.
type StatusService interface {
	GetStatus(ctx context.Context) (*status.GarageDoorStatus, error)
	SetStatus(ctx context.Context, gs status.GarageDoorStatus) error
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Errorf("encode response: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		log.Errorf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	log.Warningf("Method %s not allowed on %s", r.Method, r.URL.Path)
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgNotFound)
}
