package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/soaringjerry/mindscope/internal/middleware"
	"github.com/soaringjerry/mindscope/internal/services"
	"github.com/soaringjerry/mindscope/internal/utils"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, key string) {
	writeJSON(w, status, map[string]string{"error": utils.T(middleware.LocaleFromContext(r.Context()), key)})
}

// writeError maps service errors to status codes. Validation and conflict failures return the full
// message list; anything else is a store failure, logged and reported as 500.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		rt.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeMessage(w, r, http.StatusInternalServerError, "error.internal")
		return
	}
	switch se.Code {
	case services.ErrorInvalid:
		writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": detailsOf(se)})
	case services.ErrorConflict:
		writeJSON(w, http.StatusConflict, map[string][]string{"errors": detailsOf(se)})
	case services.ErrorNotFound:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": se.Message})
	case services.ErrorUnauthorized:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": se.Message})
	case services.ErrorForbidden:
		writeJSON(w, http.StatusForbidden, map[string]string{"error": se.Message})
	default:
		rt.log.Error("unmapped service error", "code", string(se.Code), "err", err)
		writeMessage(w, r, http.StatusInternalServerError, "error.internal")
	}
}

func detailsOf(se *services.ServiceError) []string {
	if len(se.Details) > 0 {
		return se.Details
	}
	return []string{se.Message}
}

// decodeJSON reads a bounded JSON body into v. A malformed body is answered with 400 and false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	msg := utils.T(middleware.LocaleFromContext(r.Context()), "error.bad_json")
	if errors.Is(err, io.EOF) {
		msg = "Request body is required."
	}
	writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": {msg}})
	return false
}
