package handlers

import (
	"net/http"

	"yunion.io/x/log"
)

type getStatusController struct {
	svc StatusService
}

// NewGetStatusController serves the read path for every request it receives;
// method filtering is left to the router.
func NewGetStatusController(svc StatusService) http.Handler {
	return &getStatusController{svc: svc}
}

func (g *getStatusController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveGetStatus(g.svc, w, r)
}

func serveGetStatus(svc StatusService, w http.ResponseWriter, r *http.Request) {
	gs, err := svc.GetStatus(r.Context())
	if err != nil {
		log.Errorf("Store error: %v", err)
		writeError(w, http.StatusInternalServerError, prefixDatabaseError+err.Error())
		return
	}
	if gs == nil {
		log.Infof("Response: null")
	} else {
		log.Infof("Response: %s", gs)
	}
	// a nil record encodes as JSON null
	writeJSON(w, http.StatusOK, gs)
}
