package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shellgate/shellgate/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the gateway error taxonomy onto HTTP statuses. Auth and
// store failures are reported without detail, their messages can carry
// credentials or filesystem paths.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		policyErr     *domain.PolicyError
		authErr       *domain.AuthError
		transportErr  *domain.TransportError
		storeErr      *domain.StoreError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
	case errors.As(err, &policyErr):
		status := http.StatusForbidden
		if policyErr.Subject == domain.SubjectCommand {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorResponse{Error: policyErr.Error()})
	case errors.Is(err, domain.ErrAlreadyConnected), errors.Is(err, domain.ErrNotConnected):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "authentication refused by remote server"})
	case errors.As(err, &transportErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: transportErr.Error()})
	case errors.As(err, &storeErr):
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage failure"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeBody parses a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
