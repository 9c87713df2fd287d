package handlers

import (
	"io"
	"net/http"

	"yunion.io/x/log"

	"github.com/zexi/garage-status/pkg/status"
)

// bodies beyond this size are not garage door statuses
const maxBodyBytes = 1 << 16

type setStatusController struct {
	svc StatusService
}

// NewSetStatusController serves the write path for every request it receives;
// method filtering is left to the router.
func NewSetStatusController(svc StatusService) http.Handler {
	return &setStatusController{svc: svc}
}

func (s *setStatusController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveSetStatus(s.svc, w, r)
}

func serveSetStatus(svc StatusService, w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			log.Errorf("read request body: %v", err)
			writeError(w, http.StatusBadRequest, prefixInvalidBody+err.Error())
			return
		}
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, msgBodyRequired)
		return
	}

	gs, err := status.ParseGarageDoorStatus(body)
	if err != nil {
		log.Errorf("parse request body: %v", err)
		writeError(w, http.StatusBadRequest, prefixInvalidBody+err.Error())
		return
	}
	log.Infof("Received: %s", gs)

	if err := svc.SetStatus(r.Context(), *gs); err != nil {
		log.Errorf("Store error: %v", err)
		writeError(w, http.StatusInternalServerError, prefixDatabaseError+err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}
