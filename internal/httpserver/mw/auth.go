package mw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/shellgate/shellgate/internal/logger"
)

// HeaderRequester names the operator on whose behalf an API call runs.
// The gateway checks that identity against the admin roster, the header
// only transports it.
const HeaderRequester = "X-Requester"

// RequesterFrom extracts the requester identity from a request.
func RequesterFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderRequester))
}

// RequireToken enforces a static bearer token on every request.
// If token is empty, it does NOT filter (passthrough).
func RequireToken(token string, log logger.Logger) func(http.Handler) http.Handler {
	if token == "" {
		log.Debug("RequireToken: no token configured, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare(expected, []byte(got)) != 1 {
				log.Debugf("RequireToken: request from %s REJECTED", r.RemoteAddr)
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRequester rejects requests that do not name a requester.
// Whether that requester is actually on the roster is the gateway's call.
func RequireRequester(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RequesterFrom(r) == "" {
				log.Debugf("RequireRequester: request from %s has no %s header", r.RemoteAddr, HeaderRequester)
				http.Error(w, "missing "+HeaderRequester+" header", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
