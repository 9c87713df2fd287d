package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zexi/garage-status/pkg/handlers"
	"github.com/zexi/garage-status/pkg/status"
	"github.com/zexi/garage-status/pkg/store/memory"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	statusClient = nil
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGetAndSet(t *testing.T) {
	srv := httptest.NewServer(handlers.NewRouter(status.NewService(memory.New())))
	defer srv.Close()
	ep := "--endpoint=" + srv.URL + handlers.StatusPath

	out, err := run(t, "get", ep)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if strings.TrimSpace(out) != "UNKNOWN" {
		t.Errorf("expected UNKNOWN, got %q", out)
	}

	if _, err := run(t, "set", ep, "--status=open"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	out, err = run(t, "get", ep)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if strings.TrimSpace(out) != "OPEN" {
		t.Errorf("expected OPEN, got %q", out)
	}
}

func TestSetRejectsUnknownStatus(t *testing.T) {
	if _, err := run(t, "set", "--endpoint=http://127.0.0.1:1/garage/status", "--status=ajar"); err == nil {
		t.Error("expected error for an unknown status")
	}
}
