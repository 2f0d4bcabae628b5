package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"mockapi/internal/registry"
)

func CreateHandler(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpointID, err := idParam(r, "id")
		if err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		var req struct {
			HTTPMethod         string            `json:"http_method"`
			ResponseStatusCode int               `json:"response_status_code"`
			ResponseHeaders    map[string]string `json:"response_headers"`
			ResponseBody       string            `json:"response_body"`
			Description        string            `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		h, err := store.CreateHandler(r.Context(), actorFromRequest(r), endpointID, registry.HandlerInput{
			HTTPMethod:         req.HTTPMethod,
			ResponseStatusCode: req.ResponseStatusCode,
			ResponseHeaders:    req.ResponseHeaders,
			ResponseBody:       req.ResponseBody,
			Description:        req.Description,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, h)
	}
}

func UpdateHandler(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		var req struct {
			HTTPMethod         *string           `json:"http_method"`
			ResponseStatusCode *int              `json:"response_status_code"`
			ResponseHeaders    map[string]string `json:"response_headers"`
			ResponseBody       *string           `json:"response_body"`
			Description        *string           `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		h, err := store.UpdateHandler(r.Context(), actorFromRequest(r), id, registry.HandlerUpdate{
			HTTPMethod:         req.HTTPMethod,
			ResponseStatusCode: req.ResponseStatusCode,
			ResponseHeaders:    req.ResponseHeaders,
			ResponseBody:       req.ResponseBody,
			Description:        req.Description,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, h)
	}
}

func DeleteHandler(store *registry.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		if err := store.DeleteHandler(r.Context(), actorFromRequest(r), id); err != nil {
			respondStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
