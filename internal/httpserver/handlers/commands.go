package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/mw"
)

type commandListResponse struct {
	Count    int      `json:"count"`
	Commands []string `json:"commands"`
}

type addCommandRequest struct {
	Command string `json:"command"`
}

type addCommandResponse struct {
	Added   bool   `json:"added"`
	Command string `json:"command"`
}

type removeCommandResponse struct {
	Removed  bool `json:"removed"`
	Position int  `json:"position"`
}

func ListCommands(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commands, err := d.Gateway.ListCommands(mw.RequesterFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, commandListResponse{Count: len(commands), Commands: commands})
	}
}

// AddCommand stores a command in the saved-command book. The command goes
// through the same sanitize and policy gates as execution, the book can
// never hold something the gateway would refuse to run.
func AddCommand(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addCommandRequest
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		if err := d.Gateway.AddCommand(r.Context(), mw.RequesterFrom(r), req.Command); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, addCommandResponse{Added: true, Command: req.Command})
	}
}

func RemoveCommand(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position, err := strconv.Atoi(chi.URLParam(r, "position"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "position must be a number"})
			return
		}

		ok, err := d.Gateway.RemoveCommand(r.Context(), mw.RequesterFrom(r), position)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no command at position " + strconv.Itoa(position)})
			return
		}
		writeJSON(w, http.StatusOK, removeCommandResponse{Removed: true, Position: position})
	}
}
