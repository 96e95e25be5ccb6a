package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shellgate/shellgate/internal/domain"
	"github.com/shellgate/shellgate/internal/httpserver/deps"
	"github.com/shellgate/shellgate/internal/httpserver/mw"
)

type serverListResponse struct {
	Count   int             `json:"count"`
	Servers []domain.Server `json:"servers"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Matches []domain.Match `json:"matches"`
}

type addServerRequest struct {
	Address  string `json:"address"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type addServerResponse struct {
	Added   bool   `json:"added"`
	Address string `json:"address"`
}

type deleteServerResponse struct {
	Deleted  bool `json:"deleted"`
	Position int  `json:"position"`
}

// ListServers returns the inventory. ?q= switches to ranked search,
// ?format=text renders the classic numbered block instead of JSON.
func ListServers(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester := mw.RequesterFrom(r)

		if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
			matches, err := d.Gateway.SearchServers(requester, query)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, searchResponse{Query: query, Matches: matches})
			return
		}

		servers, err := d.Gateway.ListServers(requester)
		if err != nil {
			writeError(w, err)
			return
		}

		if r.URL.Query().Get("format") == "text" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, domain.FormatServerList(servers))
			return
		}

		writeJSON(w, http.StatusOK, serverListResponse{Count: len(servers), Servers: servers})
	}
}

func AddServer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addServerRequest
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		requester := mw.RequesterFrom(r)
		if err := d.Gateway.AddServer(r.Context(), requester, req.Address, req.Username, req.Password, ""); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, addServerResponse{Added: true, Address: strings.TrimSpace(req.Address)})
	}
}

func DeleteServer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position, err := strconv.Atoi(chi.URLParam(r, "position"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "position must be a number"})
			return
		}

		requester := mw.RequesterFrom(r)
		ok, err := d.Gateway.DeleteServer(r.Context(), requester, position)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no server at position " + strconv.Itoa(position)})
			return
		}

		writeJSON(w, http.StatusOK, deleteServerResponse{Deleted: true, Position: position})
	}
}
