package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/mw"
)

type adminListResponse struct {
	Count  int      `json:"count"`
	Admins []string `json:"admins"`
}

type addAdminRequest struct {
	Identity string `json:"identity"`
}

type addAdminResponse struct {
	Added    bool   `json:"added"`
	Identity string `json:"identity"`
}

type removeAdminResponse struct {
	Removed  bool   `json:"removed"`
	Identity string `json:"identity"`
}

func ListAdmins(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admins, err := d.Gateway.ListAdmins(mw.RequesterFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, adminListResponse{Count: len(admins), Admins: admins})
	}
}

func AddAdmin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addAdminRequest
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		if err := d.Gateway.AddAdmin(r.Context(), mw.RequesterFrom(r), req.Identity); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, addAdminResponse{Added: true, Identity: req.Identity})
	}
}

func RemoveAdmin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := chi.URLParam(r, "identity")

		ok, err := d.Gateway.RemoveAdmin(r.Context(), mw.RequesterFrom(r), identity)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "identity not on the roster"})
			return
		}
		writeJSON(w, http.StatusOK, removeAdminResponse{Removed: true, Identity: identity})
	}
}
