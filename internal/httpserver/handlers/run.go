package handlers

import (
	"net/http"
	"time"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/mw"
)

type runRequest struct {
	Command        string `json:"command"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// Run executes a command on the connected server and returns its complete
// output. The request blocks until the command finishes or times out, so
// the route sits behind a generous write timeout.
func Run(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		timeout := time.Duration(req.TimeoutSeconds) * time.Second

		result, err := d.Gateway.RunCommand(r.Context(), mw.RequesterFrom(r), req.Command, timeout)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
