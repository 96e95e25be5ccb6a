package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/handlers"
)

func init() { Register(registerServers) }

func registerServers(r chi.Router, d deps.Deps) {
	sub := r.With(apiChain(d)...)
	sub.Get("/api/v1/servers", handlers.ListServers(d))
	sub.Post("/api/v1/servers", handlers.AddServer(d))
	sub.Delete("/api/v1/servers/{position}", handlers.DeleteServer(d))
}
