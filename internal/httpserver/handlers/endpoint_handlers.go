package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"mockapi/internal/registry"
)

func ListEndpoints(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := r.URL.Query().Get("all") == "1"
		eps, err := store.ListEndpoints(r.Context(), actorFromRequest(r), all)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, eps)
	}
}

func CreateEndpoint(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Path           string `json:"path"`
			Description    string `json:"description"`
			Authentication *int64 `json:"authentication"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		ep, err := store.CreateEndpoint(r.Context(), actorFromRequest(r), registry.EndpointInput{
			Path:          req.Path,
			Description:   req.Description,
			AuthProfileID: req.Authentication,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, ep)
	}
}

func GetEndpoint(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		ep, err := store.GetEndpoint(r.Context(), actorFromRequest(r), id)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ep)
	}
}

func UpdateEndpoint(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		var req struct {
			Path           *string         `json:"path"`
			Description    *string         `json:"description"`
			Authentication json.RawMessage `json:"authentication"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		upd := registry.EndpointUpdate{Path: req.Path, Description: req.Description}
		if len(req.Authentication) > 0 {
			upd.SetAuthentication = true
			if string(req.Authentication) != "null" {
				var profileID int64
				if err := json.Unmarshal(req.Authentication, &profileID); err != nil {
					respondError(w, http.StatusBadRequest, "authentication must be a profile id or null")
					return
				}
				upd.AuthProfileID = &profileID
			}
		}
		ep, err := store.UpdateEndpoint(r.Context(), actorFromRequest(r), id, upd)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ep)
	}
}

func DeleteEndpoint(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		if err := store.DeleteEndpoint(r.Context(), actorFromRequest(r), id); err != nil {
			respondStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
