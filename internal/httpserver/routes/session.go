package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/handlers"
)

func init() { Register(registerSession) }

func registerSession(r chi.Router, d deps.Deps) {
	sub := r.With(apiChain(d)...)
	sub.Get("/api/v1/session", handlers.SessionStatus(d))
	sub.Post("/api/v1/session/connect", handlers.SessionConnect(d))
	sub.Post("/api/v1/session/disconnect", handlers.SessionDisconnect(d))
}
