package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"mockapi/internal/models"
	"mockapi/internal/registry"
)

func ListAuthProfiles(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := r.URL.Query().Get("all") == "1"
		ps, err := store.ListAuthProfiles(r.Context(), actorFromRequest(r), all)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ps)
	}
}

// CreateAuthProfile returns the generated API key exactly once, in the
// creation response. List and detail responses never include it.
func CreateAuthProfile(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name              string  `json:"name"`
			AuthType          string  `json:"auth_type"`
			APIKey            *string `json:"api_key"`
			BasicAuthUsername *string `json:"basic_auth_username"`
			Password          *string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := store.CreateAuthProfile(r.Context(), actorFromRequest(r), registry.AuthProfileInput{
			Name:              req.Name,
			AuthType:          req.AuthType,
			APIKey:            req.APIKey,
			BasicAuthUsername: req.BasicAuthUsername,
			Password:          req.Password,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		resp := map[string]any{
			"id":                  p.ID,
			"name":                p.Name,
			"auth_type":           p.AuthType,
			"basic_auth_username": p.BasicAuthUsername,
			"owner_id":            p.OwnerID,
			"created_at":          p.CreatedAt,
		}
		if p.AuthType == models.AuthTypeAPIKey && p.APIKey != nil {
			resp["api_key"] = *p.APIKey
		}
		respondJSON(w, http.StatusCreated, resp)
	}
}

func GetAuthProfile(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		p, err := store.GetAuthProfile(r.Context(), actorFromRequest(r), id)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

func UpdateAuthProfile(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		var req struct {
			Name              *string `json:"name"`
			AuthType          *string `json:"auth_type"`
			APIKey            *string `json:"api_key"`
			BasicAuthUsername *string `json:"basic_auth_username"`
			Password          *string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := store.UpdateAuthProfile(r.Context(), actorFromRequest(r), id, registry.AuthProfileUpdate{
			Name:              req.Name,
			AuthType:          req.AuthType,
			APIKey:            req.APIKey,
			BasicAuthUsername: req.BasicAuthUsername,
			Password:          req.Password,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

func DeleteAuthProfile(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		if err := store.DeleteAuthProfile(r.Context(), actorFromRequest(r), id); err != nil {
			respondStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
