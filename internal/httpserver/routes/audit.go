package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/handlers"
)

func init() { Register(registerAudit) }

func registerAudit(r chi.Router, d deps.Deps) {
	r.With(apiChain(d)...).Get("/api/v1/audit", handlers.Audit(d))
}
