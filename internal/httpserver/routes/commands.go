package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/handlers"
)

func init() { Register(registerCommands) }

func registerCommands(r chi.Router, d deps.Deps) {
	sub := r.With(apiChain(d)...)
	sub.Get("/api/v1/commands", handlers.ListCommands(d))
	sub.Post("/api/v1/commands", handlers.AddCommand(d))
	sub.Delete("/api/v1/commands/{position}", handlers.RemoveCommand(d))
}
