package handlers

import (
	"net/http"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports whether the server can take operator traffic. The gateway
// is wired before the listener starts, so a nil gateway means the process
// is still booting or misassembled.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := d.Gateway != nil && d.Policy != nil

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: ready})
	}
}
