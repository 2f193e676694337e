package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NativeSquare/Cadence-sub000/internal/session"
)

type ctxKey int

const ctxKeySession ctxKey = iota

// interviewMiddleware resolves {id} to its live session.
func interviewMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := reg.Get(chi.URLParam(r, "id"))
			if err != nil {
				writeError(w, http.StatusNotFound, "interview not found")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeySession, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func interviewSession(r *http.Request) *session.Session {
	return r.Context().Value(ctxKeySession).(*session.Session)
}
