package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"yunion.io/x/log"

	"github.com/zexi/garage-status/pkg/metrics"
)

const (
	StatusPath       = "/garage/status"
	GetStatusPath    = "/garage/status/get"
	UpdateStatusPath = "/garage/status/update"
	MetricsPath      = "/metrics"
)

func NewRouter(svc StatusService) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogMiddleware)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.Handle(StatusPath, NewStatusController(svc))
	r.Handle(GetStatusPath, NewGetStatusController(svc)).Methods(http.MethodGet)
	r.Handle(UpdateStatusPath, NewSetStatusController(svc)).Methods(http.MethodPost)
	r.Handle(MetricsPath, metrics.Handler()).Methods(http.MethodGet)
	return r
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		WithRequestLog(route, next).ServeHTTP(w, r)
	})
}

// WithRequestLog logs and counts every request h serves under route.
func WithRequestLog(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h.ServeHTTP(rec, r)
		metrics.ObserveRequest(route, r.Method, rec.code)
		log.Infof("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.code, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}
