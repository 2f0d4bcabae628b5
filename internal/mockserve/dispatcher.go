package mockserve

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"mockapi/internal/audit"
	"mockapi/internal/mockpath"
	"mockapi/internal/models"
	"mockapi/internal/registry"
)

// Dispatcher serves every inbound request outside the management prefix:
// normalize path, look up the endpoint, enforce its auth profile, select the
// method handler and render the configured response.
//
// Audit policy on this path: successful renders produce a READ entry and
// auth failures an AUTH_FAILURE entry. Plain 404s and 405s are not logged so
// scanner noise cannot flood the trail.
type Dispatcher struct {
	store *registry.Store
	rec   *audit.Recorder
	lg    *zap.SugaredLogger
}

func NewDispatcher(store *registry.Store, rec *audit.Recorder, lg *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{store: store, rec: rec, lg: lg}
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path, err := mockpath.Normalize(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}

	ep, err := d.store.FindEndpointByPath(ctx, path)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		d.lg.Errorw("endpoint lookup failed", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	method := strings.ToUpper(r.Method)
	if err := CheckAuth(r, ep.AuthProfile); err != nil {
		authType := ""
		if ep.AuthProfile != nil {
			authType = ep.AuthProfile.AuthType
		}
		d.rec.Record(ctx, nil, models.ActionAuthFailure, &ep.ID, nil,
			audit.AuthFailureSnapshot(method, path, authType))
		if errors.Is(err, ErrMisconfiguredProfile) {
			d.lg.Errorw("misconfigured auth profile", "path", path, "profile_id", ep.AuthProfileID, "auth_type", authType)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if authType == models.AuthTypeBasic {
			w.Header().Set("WWW-Authenticate", `Basic realm="mockapi"`)
		}
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h, err := d.store.FindHandler(ctx, ep.ID, method)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			allowed, aerr := d.store.AllowedMethods(ctx, ep.ID)
			if aerr != nil {
				d.lg.Errorw("allowed methods lookup failed", "path", path, "error", aerr)
			}
			if len(allowed) > 0 {
				w.Header().Set("Allow", strings.Join(allowed, ", "))
			}
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		d.lg.Errorw("handler lookup failed", "path", path, "method", method, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := Render(w, h)
	d.rec.Record(ctx, nil, models.ActionRead, &ep.ID, nil, audit.AccessSnapshot(method, path, status))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
