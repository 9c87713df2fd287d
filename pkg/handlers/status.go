package handlers

import (
	"net/http"
)

type statusController struct {
	svc StatusService
}

// NewStatusController serves both paths on one endpoint: GET reads, POST
// writes, and any other method is answered with 405 without touching the
// store.
func NewStatusController(svc StatusService) http.Handler {
	return &statusController{svc: svc}
}

func (c *statusController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		serveGetStatus(c.svc, w, r)
	case http.MethodPost:
		serveSetStatus(c.svc, w, r)
	default:
		methodNotAllowed(w, r)
	}
}
