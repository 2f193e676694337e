package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/flow"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
	"github.com/NativeSquare/Cadence-sub000/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps engine errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, flow.ErrInvalidAnswer),
		errors.Is(err, flow.ErrNotSkippable),
		errors.Is(err, flow.ErrNothingChosen),
		errors.Is(err, scene.ErrEmptyName),
		errors.Is(err, device.ErrUnknownProvider),
		errors.Is(err, session.ErrNotSelectable),
		errors.Is(err, session.ErrNeedsConfirm):
		return http.StatusBadRequest
	case errors.Is(err, device.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, errInterviewComplete),
		errors.Is(err, scene.ErrWrongScene),
		errors.Is(err, scene.ErrStaleCue),
		errors.Is(err, scene.ErrPending),
		errors.Is(err, scene.ErrNotPending),
		errors.Is(err, scene.ErrNotReady),
		errors.Is(err, scene.ErrComplete),
		errors.Is(err, scene.ErrInvalidResume),
		errors.Is(err, flow.ErrNotAtIntro),
		errors.Is(err, flow.ErrNotAtQuestion),
		errors.Is(err, flow.ErrNotAtReaction),
		errors.Is(err, flow.ErrAtStart),
		errors.Is(err, flow.ErrComplete),
		errors.Is(err, session.ErrNoQuestion),
		errors.Is(err, session.ErrClosed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeErr writes err with its mapped status. Internal errors are not
// echoed to the client.
func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}
