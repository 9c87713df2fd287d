package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zexi/garage-status/pkg/status"
	"github.com/zexi/garage-status/pkg/store/memory"
)

func TestSelectHandler(t *testing.T) {
	svc := status.NewService(memory.New())

	update, err := selectHandler("update", svc)
	if err != nil {
		t.Fatalf("selectHandler(update) failed: %v", err)
	}
	rec := httptest.NewRecorder()
	update.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"OPEN"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}

	get, err := selectHandler("get", svc)
	if err != nil {
		t.Fatalf("selectHandler(get) failed: %v", err)
	}
	rec = httptest.NewRecorder()
	get.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.TrimSpace(rec.Body.String()) != `{"status":"OPEN"}` {
		t.Errorf("get: unexpected body %q", rec.Body.String())
	}

	combined, err := selectHandler("combined", svc)
	if err != nil {
		t.Fatalf("selectHandler(combined) failed: %v", err)
	}
	rec = httptest.NewRecorder()
	combined.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("combined: expected 405, got %d", rec.Code)
	}

	if _, err := selectHandler("delete", svc); err == nil {
		t.Error("expected error for an unknown handler")
	}
}
