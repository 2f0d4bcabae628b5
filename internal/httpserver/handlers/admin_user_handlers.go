package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mockapi/internal/audit"
	"mockapi/internal/auth"
	"mockapi/internal/models"
)

func ListUsers(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var users []models.User
		_ = db.Preload("Roles").Order("created_at desc").Find(&users).Error
		respondJSON(w, http.StatusOK, users)
	}
}

func CreateUser(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string   `json:"email"`
			Password string   `json:"password"`
			Roles    []string `json:"roles"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "email and password required")
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		u := models.User{Email: req.Email, PasswordHash: hash, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if len(req.Roles) == 0 {
			req.Roles = []string{"User"}
		}
		var roles []models.Role
		if err := db.Where("name IN ?", req.Roles).Find(&roles).Error; err == nil {
			u.Roles = roles
		}
		if err := db.Create(&u).Error; err != nil {
			respondError(w, http.StatusBadRequest, "could not create user")
			return
		}
		actor := auth.Subject(r.Context())
		rec.Record(r.Context(), &actor, models.ActionCreate, nil, nil, audit.UserSnapshot(&u))
		respondJSON(w, http.StatusCreated, map[string]any{"id": u.ID, "email": u.Email})
	}
}

func UpdateUser(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Email    *string  `json:"email"`
			IsActive *bool    `json:"is_active"`
			Password *string  `json:"password"`
			Roles    []string `json:"roles"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var u models.User
		if err := db.Preload("Roles").First(&u, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		old := audit.UserSnapshot(&u)
		if req.Email != nil {
			u.Email = strings.TrimSpace(strings.ToLower(*req.Email))
		}
		if req.IsActive != nil {
			u.IsActive = *req.IsActive
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "internal error")
				return
			}
			u.PasswordHash = hash
		}
		if req.Roles != nil {
			var roles []models.Role
			_ = db.Where("name IN ?", req.Roles).Find(&roles).Error
			_ = db.Model(&u).Association("Roles").Replace(roles)
			u.Roles = roles
		}
		u.UpdatedAt = time.Now()
		if err := db.Save(&u).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		actor := auth.Subject(r.Context())
		rec.Record(r.Context(), &actor, models.ActionUpdate, nil, old, audit.UserSnapshot(&u))
		respondJSON(w, http.StatusOK, map[string]any{"updated": true})
	}
}

func DeleteUser(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		old := audit.UserSnapshot(&u)
		if err := db.Delete(&u).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		actor := auth.Subject(r.Context())
		rec.Record(r.Context(), &actor, models.ActionDelete, nil, old, nil)
		w.WriteHeader(http.StatusNoContent)
	}
}
