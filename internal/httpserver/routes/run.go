package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/handlers"
)

func init() { Register(registerRun) }

func registerRun(r chi.Router, d deps.Deps) {
	r.With(apiChain(d)...).Post("/api/v1/run", handlers.Run(d))
}
