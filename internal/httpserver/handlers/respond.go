package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mockapi/internal/auth"
	"mockapi/internal/mockpath"
	"mockapi/internal/registry"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondStoreError maps registry sentinels onto the HTTP statuses of the
// error taxonomy. Unknown errors become an opaque 500; internals never leak.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, registry.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, registry.ErrDuplicatePath),
		errors.Is(err, registry.ErrDuplicateMethod),
		errors.Is(err, registry.ErrDuplicateName):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, mockpath.ErrEmptyPath),
		errors.Is(err, registry.ErrPathImmutable),
		errors.Is(err, registry.ErrMethodImmutable),
		errors.Is(err, registry.ErrInvalidMethod),
		errors.Is(err, registry.ErrInvalidStatus),
		errors.Is(err, registry.ErrInvalidProfile),
		errors.Is(err, registry.ErrProfileNotFound):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func actorFromRequest(r *http.Request) registry.Actor {
	c := auth.FromContext(r.Context())
	return registry.Actor{ID: c.Subject, Admin: c.IsAdmin()}
}

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
