package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/session"
)

type NameRequest struct {
	Name string `json:"name"`
	// Edited is true when the user changed the prefilled name.
	Edited bool `json:"edited"`
}

type SelectRequest struct {
	Value string `json:"value"`
}

type AnswerRequest struct {
	Value string `json:"value"`
}

type ConnectRequest struct {
	Provider string `json:"provider"`
}

type InterviewListResponse struct {
	Interviews []InterviewSummary `json:"interviews"`
}

type InterviewRecordResponse struct {
	InterviewRecord
	Connections []device.ConnectionResult `json:"connections"`
	Live        bool                      `json:"live"`
}

type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

func handleCreateInterview(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateInterviewRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)

		s, err := reg.Create(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, s.Snapshot())
	}
}

func handleResumeInterview(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := reg.Resume(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

func handleListInterviews(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status != "" && status != StatusActive && status != StatusComplete {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", status))
			return
		}
		list, err := store.ListInterviews(r.Context(), status)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, InterviewListResponse{Interviews: list})
	}
}

// handleInterviewRecord returns the stored interview, live or not.
func handleInterviewRecord(reg *Registry, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, err := store.GetInterview(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		conns, err := store.ListConnections(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if conns == nil {
			conns = []device.ConnectionResult{}
		}
		_, liveErr := reg.Get(id)
		writeJSON(w, http.StatusOK, InterviewRecordResponse{
			InterviewRecord: rec,
			Connections:     conns,
			Live:            liveErr == nil,
		})
	}
}

func handleProviders(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ProvidersResponse{Providers: reg.Providers()})
	}
}

func handleSnapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, interviewSession(r).Snapshot())
	}
}

func handleRelease(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.Release(chi.URLParam(r, "id")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleAction applies act to the request's session and responds with the
// resulting snapshot.
func handleAction(logger *slog.Logger, name string, act func(*session.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := interviewSession(r)
		if err := act(s); err != nil {
			logger.Debug("interview action rejected", "interview", s.ID(), "action", name, "error", err)
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

// handleActionWith decodes a T request body before applying act.
func handleActionWith[T any](logger *slog.Logger, name string, act func(*session.Session, T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		handleAction(logger, name, func(s *session.Session) error { return act(s, req) })(w, r)
	}
}

func confirmName(s *session.Session, req NameRequest) error {
	return s.ConfirmName(strings.TrimSpace(req.Name), req.Edited)
}

func selectOption(s *session.Session, req SelectRequest) error { return s.Select(req.Value) }

func submitAnswer(s *session.Session, req AnswerRequest) error { return s.Submit(req.Value) }

func connectDevice(reg *Registry) func(*session.Session, ConnectRequest) error {
	return func(s *session.Session, req ConnectRequest) error {
		if req.Provider == "" || !reg.KnownProvider(req.Provider) {
			return fmt.Errorf("%w: %q", device.ErrUnknownProvider, req.Provider)
		}
		return s.Connect(req.Provider)
	}
}
