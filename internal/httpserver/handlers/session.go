package handlers

import (
	"net/http"

	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/mw"
)

type connectRequest struct {
	// Position selects an inventory row, 1-based. When zero the explicit
	// credentials below are used instead.
	Position int    `json:"position,omitempty"`
	Address  string `json:"address,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type connectResponse struct {
	Connected bool                 `json:"connected"`
	Status    domain.SessionStatus `json:"status"`
}

type disconnectResponse struct {
	Disconnected bool `json:"disconnected"`
}

// SessionStatus reports the current state of the connection slot.
func SessionStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := d.Gateway.Status(mw.RequesterFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

// SessionConnect claims the connection slot, either by inventory position
// or with explicit credentials. A live session is never replaced, the call
// conflicts instead.
func SessionConnect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req connectRequest
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		requester := mw.RequesterFrom(r)
		ctx := r.Context()

		var err error
		if req.Position > 0 {
			err = d.Gateway.ConnectPosition(ctx, requester, req.Position)
		} else {
			err = d.Gateway.Connect(ctx, requester, req.Address, req.Username, req.Password)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		status, err := d.Gateway.Status(requester)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, connectResponse{Connected: true, Status: status})
	}
}

// SessionDisconnect releases the connection slot. Disconnecting an idle
// slot is not an error, the response just says nothing was released.
func SessionDisconnect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := d.Gateway.Disconnect(r.Context(), mw.RequesterFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, disconnectResponse{Disconnected: ok})
	}
}
