package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NativeSquare/Cadence-sub000/internal/handler/health"
)

type mockChecker struct{ err error }

func (m mockChecker) Check(_ context.Context) error { return m.err }

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		devices    health.Checker
		wantStatus int
		wantReport string
		wantChecks map[string]string
	}{
		{
			name:       "all healthy",
			checks:     map[string]health.Checker{"sqlite": mockChecker{}},
			devices:    mockChecker{},
			wantStatus: http.StatusOK,
			wantReport: health.StatusOK,
			wantChecks: map[string]string{"sqlite": "ok", "devices": "ok"},
		},
		{
			name:       "sqlite down",
			checks:     map[string]health.Checker{"sqlite": mockChecker{err: errors.New("locked")}},
			devices:    mockChecker{},
			wantStatus: http.StatusServiceUnavailable,
			wantReport: health.StatusError,
			wantChecks: map[string]string{"sqlite": "error", "devices": "ok"},
		},
		{
			name:       "device breaker open",
			checks:     map[string]health.Checker{"sqlite": mockChecker{}},
			devices:    mockChecker{err: errors.New("breaker open")},
			wantStatus: http.StatusOK,
			wantReport: health.StatusDegraded,
			wantChecks: map[string]string{"sqlite": "ok", "devices": "error"},
		},
		{
			name:       "both down",
			checks:     map[string]health.Checker{"sqlite": mockChecker{err: errors.New("db")}},
			devices:    mockChecker{err: errors.New("breaker open")},
			wantStatus: http.StatusServiceUnavailable,
			wantReport: health.StatusError,
			wantChecks: map[string]string{"sqlite": "error", "devices": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.Default(), tt.checks).Optional("devices", tt.devices)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body health.Report
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if body.Status != tt.wantReport {
				t.Errorf("report status = %q, want %q", body.Status, tt.wantReport)
			}
			for name, want := range tt.wantChecks {
				if got := body.Checks[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestCheckerFuncReportsError(t *testing.T) {
	down := health.CheckerFunc(func(context.Context) error { return errors.New("refused") })
	h := health.NewHandler(slog.Default(), map[string]health.Checker{"sqlite": down})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body health.Report
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got := body.Checks["sqlite"].Error; got != "refused" {
		t.Errorf("error = %q, want %q", got, "refused")
	}
}
