package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/handlers"
)

func init() { Register(registerAdmins) }

func registerAdmins(r chi.Router, d deps.Deps) {
	sub := r.With(apiChain(d)...)
	sub.Get("/api/v1/admins", handlers.ListAdmins(d))
	sub.Post("/api/v1/admins", handlers.AddAdmin(d))
	sub.Delete("/api/v1/admins/{identity}", handlers.RemoveAdmin(d))
}
