// Package metrics exposes Prometheus counters for HTTP requests and record
// store operations.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zexi/garage-status/pkg/store"
)

const namespace = "garage_status"

var (
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route, method and status code.",
	}, []string{"route", "method", "code"})

	storeOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_operations_total",
		Help:      "Record store calls, by operation and result.",
	}, []string{"operation", "result"})
)

func init() {
	Registry.MustRegister(httpRequests, storeOperations)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveRequest(route, method string, code int) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

func observeStore(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperations.WithLabelValues(op, result).Inc()
}

type instrumentedStore struct {
	next store.RecordStore
}

// InstrumentStore counts every call made through s.
func InstrumentStore(s store.RecordStore) store.RecordStore {
	return &instrumentedStore{next: s}
}

func (s *instrumentedStore) GetItem(ctx context.Context, table string, key store.Key) (store.Item, error) {
	item, err := s.next.GetItem(ctx, table, key)
	observeStore("get_item", err)
	return item, err
}

func (s *instrumentedStore) PutItem(ctx context.Context, table string, key store.Key, attrs store.Item) error {
	err := s.next.PutItem(ctx, table, key, attrs)
	observeStore("put_item", err)
	return err
}
