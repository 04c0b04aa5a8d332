package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/technotes/apiserver/internal/logging"
	"github.com/technotes/apiserver/internal/services"
	"github.com/technotes/apiserver/types"
)

const maxBodyBytes = 1 << 20

type contextKey string

const contextSubjectKey contextKey = "sub"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse acknowledges a successful write.
type MessageResponse struct {
	Message string `json:"message"`
}

func subjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(contextSubjectKey).(string)
	return subject, ok && subject != ""
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// decodeJSON reads a request body into dst. A field holding a value of the
// wrong JSON type is left at its zero value so the service reports it as
// missing. An empty body decodes to an empty object.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.As(err, &typeErr):
		return nil
	default:
		return err
	}
}

// writeServiceError maps a service failure to a response. Validation and
// not-found failures are 400; conflicts use conflictStatus because some
// operations report them as 400. Anything else is logged and hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error, conflictStatus int) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		switch {
		case errors.Is(svcErr, services.ErrConflict):
			writeError(w, conflictStatus, svcErr.Message)
		default:
			writeError(w, http.StatusBadRequest, svcErr.Message)
		}
		return
	}

	logger.Error(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// optionalRoles accepts only a non-empty array of non-empty strings. Any
// other shape is treated as absent.
func optionalRoles(v any) types.Roles {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	roles := make(types.Roles, 0, len(items))
	for _, item := range items {
		role, ok := item.(string)
		if !ok || role == "" {
			return nil
		}
		roles = append(roles, role)
	}
	return roles
}

// optionalBool returns nil unless v is a JSON boolean.
func optionalBool(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

func withMiddleware(r chi.Router, middlewares ...func(http.Handler) http.Handler) chi.Router {
	var active []func(http.Handler) http.Handler
	for _, mw := range middlewares {
		if mw != nil {
			active = append(active, mw)
		}
	}
	if len(active) == 0 {
		return r
	}
	return r.With(active...)
}
