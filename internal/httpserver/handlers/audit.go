package handlers

import (
	"net/http"
	"strconv"

	"github.com/shellgate/shellgate/internal/audit"
	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/mw"
)

const defaultAuditLimit = 50

type auditResponse struct {
	Count  int           `json:"count"`
	Events []audit.Event `json:"events"`
}

// Audit returns the most recent audit events, newest first. Only available
// when the redis trail is configured, log-only auditing has nothing to
// query.
func Audit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Gateway.Authorize(mw.RequesterFrom(r)); err != nil {
			writeError(w, err)
			return
		}

		if d.AuditTrail == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "audit trail not configured"})
			return
		}

		limit := defaultAuditLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive number"})
				return
			}
			limit = n
		}

		events, err := d.AuditTrail.Recent(r.Context(), limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "audit trail unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, auditResponse{Count: len(events), Events: events})
	}
}
