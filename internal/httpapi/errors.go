package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"jukebot/internal/resolver"
	"jukebot/pkg/types"
)

// kindValidation tags request-shape failures, which never reach the
// resolver and so have no types.ErrorKind.
const kindValidation = "validation"

// statusForKind maps a resolution failure classification to an HTTP
// status. Unclassified errors fall through to 500.
func statusForKind(kind types.ErrorKind) int {
	switch kind {
	case types.ErrorKindNoMatch:
		return http.StatusNotFound
	case types.ErrorKindTimeout:
		return http.StatusGatewayTimeout
	case types.ErrorKindBackendUnavailable:
		return http.StatusServiceUnavailable
	case types.ErrorKindExtractionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeResolveError maps a resolver error onto the wire.
func writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	kind := resolver.KindOf(err)
	writeError(w, r, statusForKind(kind), string(kind), err.Error())
}

// writeError writes the consistent JSON error payload.
func writeError(w http.ResponseWriter, r *http.Request, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{
		Error:     msg,
		Kind:      kind,
		Code:      status,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeJSON writes a success payload. Encode failures mean the client
// went away; there is nothing useful left to send.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
