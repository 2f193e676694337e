package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/NativeSquare/Cadence-sub000/internal/session"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Store    Store
	Registry *Registry
	Broker   *Broker
	// Health is mounted at /healthz when set.
	Health http.Handler
}

func addRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	reg := d.Registry

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Cadence Onboarding API", "/openapi.json", "/docs"))
	if d.Health != nil {
		r.Mount("/healthz", d.Health)
	}

	r.Get("/api/devices", handleProviders(reg))

	r.Route("/api/interviews", func(r chi.Router) {
		r.Get("/", handleListInterviews(d.Store))
		r.Post("/", handleCreateInterview(reg))
		r.Get("/{id}/record", handleInterviewRecord(reg, d.Store))
		r.Post("/{id}/resume", handleResumeInterview(reg))

		// Live session routes, {id} resolved by interviewMiddleware.
		r.Group(func(r chi.Router) {
			r.Use(interviewMiddleware(reg))
			r.Get("/{id}", handleSnapshot())
			r.Delete("/{id}", handleRelease(reg))
			r.Get("/{id}/events", handleEvents(logger, d.Broker))

			r.Post("/{id}/name", handleActionWith(logger, "name", confirmName))
			r.Post("/{id}/select", handleActionWith(logger, "select", selectOption))
			r.Post("/{id}/answer", handleActionWith(logger, "answer", submitAnswer))
			r.Post("/{id}/confirm", handleAction(logger, "confirm", (*session.Session).Confirm))
			r.Post("/{id}/skip", handleAction(logger, "skip", (*session.Session).Skip))
			r.Post("/{id}/back", handleAction(logger, "back", (*session.Session).Back))
			r.Post("/{id}/reveal/finish", handleAction(logger, "finish reveal", (*session.Session).FinishReveal))
			r.Post("/{id}/connect", handleActionWith(logger, "connect", connectDevice(reg)))
			r.Post("/{id}/connect/skip", handleAction(logger, "skip connect", (*session.Session).SkipConnect))
			r.Post("/{id}/complete", handleAction(logger, "complete", (*session.Session).Complete))
		})
	})

	r.With(interviewMiddleware(reg)).Get("/ws/interviews/{id}", handleRevealSocket(logger, d.Broker))
}
