package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

type Handler struct {
	checks   map[string]Checker
	optional map[string]Checker
	timeout  time.Duration
	logger   *slog.Logger
}

// NewHandler reports 503 when any of checks fails.
func NewHandler(logger *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{
		checks:   checks,
		optional: map[string]Checker{},
		timeout:  3 * time.Second,
		logger:   logger,
	}
}

// Optional registers a dependency whose failure degrades the service
// without making it unhealthy.
func (h *Handler) Optional(name string, c Checker) *Handler {
	h.optional[name] = c
	return h
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type Result struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type Report struct {
	Status string            `json:"status"`
	Checks map[string]Result `json:"checks"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report := h.run(ctx)
	status := http.StatusOK
	if report.Status == StatusError {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(report)
}

// run executes every check concurrently.
func (h *Handler) run(ctx context.Context) Report {
	var (
		mu      sync.Mutex
		results = make(map[string]Result, len(h.checks)+len(h.optional))
		failed  bool
		degrade bool
	)
	g, ctx := errgroup.WithContext(ctx)
	start := func(name string, c Checker, required bool) {
		g.Go(func() error {
			begin := time.Now()
			err := c.Check(ctx)
			res := Result{Status: StatusOK, LatencyMS: time.Since(begin).Milliseconds()}
			if err != nil {
				res.Status, res.Error = StatusError, err.Error()
				h.logger.Error("health check failed", "name", name, "required", required, "error", err)
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = res
			if err != nil {
				if required {
					failed = true
				} else {
					degrade = true
				}
			}
			// A failed check must not cancel the others.
			return nil
		})
	}
	for name, c := range h.checks {
		start(name, c, true)
	}
	for name, c := range h.optional {
		start(name, c, false)
	}
	g.Wait()

	rep := Report{Status: StatusOK, Checks: results}
	switch {
	case failed:
		rep.Status = StatusError
	case degrade:
		rep.Status = StatusDegraded
	}
	return rep
}
