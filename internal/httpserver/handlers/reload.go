package handlers

import (
	"net/http"

	"github.com/shellgate/shellgate/internal/audit"
	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/mw"
	"github.com/shellgate/shellgate/internal/logger"
)

// Reload triggers an immediate re-read of the policy file
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester := mw.RequesterFrom(r)
		if err := d.Gateway.Authorize(requester); err != nil {
			writeError(w, err)
			return
		}

		if d.ReloadTrigger == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no policy file configured"})
			return
		}

		triggered := false
		select {
		case d.ReloadTrigger <- struct{}{}:
			triggered = true
			d.Logger.Info("manual policy reload triggered via endpoint",
				logger.String("requester", requester))
		default:
			d.Logger.Warn("policy reload already in progress",
				logger.String("requester", requester))
		}

		if d.Audit != nil {
			d.Audit.Record(r.Context(), audit.Event{
				Requester: requester,
				Action:    audit.ActionPolicyReload,
				OK:        triggered,
			})
		}

		if triggered {
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("✅ Policy reload triggered successfully\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		} else {
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Reload already in progress, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}
