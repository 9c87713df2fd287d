package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/status"
	"github.com/zexi/garage-status/pkg/store"
	"github.com/zexi/garage-status/pkg/store/memory"
)

type fakeStore struct {
	mem        *memory.Store
	gets, puts int
	putKeys    []store.Key
	putAttrs   []store.Item
	err        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{mem: memory.New()}
}

func (f *fakeStore) GetItem(ctx context.Context, table string, key store.Key) (store.Item, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	return f.mem.GetItem(ctx, table, key)
}

func (f *fakeStore) PutItem(ctx context.Context, table string, key store.Key, attrs store.Item) error {
	f.puts++
	f.putKeys = append(f.putKeys, key)
	f.putAttrs = append(f.putAttrs, attrs)
	if f.err != nil {
		return f.err
	}
	return f.mem.PutItem(ctx, table, key, attrs)
}

func serve(h http.Handler, method, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, StatusPath, nil)
	} else {
		req = httptest.NewRequest(method, StatusPath, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not json: %q: %v", rec.Body.String(), err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	return resp.Error
}

func TestGet_BeforeAnyWrite(t *testing.T) {
	st := newFakeStore()
	rec := serve(NewStatusController(status.NewService(st)), http.MethodGet, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "null" {
		t.Errorf("expected null body, got %q", rec.Body.String())
	}
	if st.gets != 1 {
		t.Errorf("expected one read, got %d", st.gets)
	}
}

func TestPost_EmptyBody(t *testing.T) {
	st := newFakeStore()
	rec := serve(NewStatusController(status.NewService(st)), http.MethodPost, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); msg != "Request body required" {
		t.Errorf("unexpected error %q", msg)
	}
	if st.puts != 0 {
		t.Errorf("empty body must not write, got %d writes", st.puts)
	}
}

func TestPost_MalformedBody(t *testing.T) {
	for _, body := range []string{`{"status":"AJAR"}`, `{}`, `{"status":`, `"OPEN"`} {
		st := newFakeStore()
		rec := serve(NewSetStatusController(status.NewService(st)), http.MethodPost, body)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
			continue
		}
		if msg := errorBody(t, rec); !strings.HasPrefix(msg, "Invalid request body: ") {
			t.Errorf("%s: unexpected error %q", body, msg)
		}
		if st.puts != 0 {
			t.Errorf("%s: malformed body must not write", body)
		}
	}
}

func TestPost_Open(t *testing.T) {
	st := newFakeStore()
	svc := status.NewService(st)
	rec := serve(NewStatusController(svc), http.MethodPost, `{"status":"OPEN"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
	if st.puts != 1 {
		t.Fatalf("expected exactly one write, got %d", st.puts)
	}
	if st.putKeys[0].Name != "garage_name" || st.putKeys[0].Value != "main_garage" {
		t.Errorf("unexpected key %+v", st.putKeys[0])
	}
	if st.putAttrs[0]["status"] != "OPEN" {
		t.Errorf("unexpected attributes %v", st.putAttrs[0])
	}

	rec = serve(NewGetStatusController(svc), http.MethodGet, "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"OPEN"}` {
		t.Errorf("unexpected read after write: %d %q", rec.Code, rec.Body.String())
	}
}

func TestCombined_OtherMethods(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead, http.MethodOptions} {
		st := newFakeStore()
		rec := serve(NewStatusController(status.NewService(st)), method, `{"status":"OPEN"}`)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", method, rec.Code)
		}
		if method != http.MethodHead {
			if msg := errorBody(t, rec); msg != "Method not allowed" {
				t.Errorf("%s: unexpected error %q", method, msg)
			}
		}
		if st.gets != 0 || st.puts != 0 {
			t.Errorf("%s: store touched (gets=%d puts=%d)", method, st.gets, st.puts)
		}
	}
}

func TestStoreFailure(t *testing.T) {
	st := newFakeStore()
	st.err = errors.Error("connection reset by peer")
	h := NewStatusController(status.NewService(st))

	for _, tc := range []struct {
		method, body string
	}{
		{http.MethodGet, ""},
		{http.MethodPost, `{"status":"CLOSED"}`},
	} {
		rec := serve(h, tc.method, tc.body)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", tc.method, rec.Code)
			continue
		}
		msg := errorBody(t, rec)
		if !strings.HasPrefix(msg, "Database error: ") || !strings.Contains(msg, "connection reset by peer") {
			t.Errorf("%s: unexpected error %q", tc.method, msg)
		}
	}
	if st.mem.Len(status.DefaultTableName) != 0 {
		t.Errorf("failed write left state behind")
	}
}

func TestRouter(t *testing.T) {
	st := newFakeStore()
	r := NewRouter(status.NewService(st))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(http.MethodPost, UpdateStatusPath, `{"status":"CLOSED"}`); rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}
	rec := do(http.MethodGet, GetStatusPath, "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"CLOSED"}` {
		t.Errorf("get: unexpected %d %q", rec.Code, rec.Body.String())
	}
	rec = do(http.MethodGet, StatusPath, "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"CLOSED"}` {
		t.Errorf("combined get: unexpected %d %q", rec.Code, rec.Body.String())
	}

	writes := st.puts
	rec = do(http.MethodPost, GetStatusPath, `{"status":"OPEN"}`)
	if rec.Code != http.StatusMethodNotAllowed || errorBody(t, rec) != "Method not allowed" {
		t.Errorf("post to get route: unexpected %d %q", rec.Code, rec.Body.String())
	}
	if st.puts != writes {
		t.Errorf("rejected request reached the store")
	}

	rec = do(http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || errorBody(t, rec) != "Not found" {
		t.Errorf("unknown path: unexpected %d %q", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodGet, MetricsPath, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "garage_status_http_requests_total") {
		t.Errorf("metrics: unexpected %d", rec.Code)
	}
}
