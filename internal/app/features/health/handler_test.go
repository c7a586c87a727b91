package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/freightdesk/internal/app/features/health"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context, *readpref.ReadPref) error { return f.err }

func serve(t *testing.T, p health.Pinger) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	h := health.NewHandler(p, zap.NewNop())
	rec := httptest.NewRecorder()
	health.Routes(h).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return rec, body
}

func TestServe_OK(t *testing.T) {
	rec, body := serve(t, fakePinger{})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if body["status"] != "ok" || body["database"] != "connected" {
		t.Errorf("unexpected body: %v", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	rec, body := serve(t, fakePinger{err: errors.New("no reachable servers")})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if body["status"] != "error" || body["database"] != "disconnected" {
		t.Errorf("unexpected body: %v", body)
	}
	if body["error"] != "no reachable servers" {
		t.Errorf("error = %v", body["error"])
	}
}
