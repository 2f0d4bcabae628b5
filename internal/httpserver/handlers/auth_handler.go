package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mockapi/internal/audit"
	"mockapi/internal/auth"
	"mockapi/internal/models"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		email := strings.TrimSpace(strings.ToLower(req.Email))
		var u models.User
		if err := db.Preload("Roles").First(&u, "email = ?", email).Error; err != nil {
			rec.Record(r.Context(), nil, models.ActionAuthFailure, nil, nil, audit.LoginSnapshot(email))
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if !u.IsActive || auth.CheckPassword(u.PasswordHash, req.Password) != nil {
			rec.Record(r.Context(), &u.ID, models.ActionAuthFailure, nil, nil, audit.LoginSnapshot(email))
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		var roleNames []string
		for _, role := range u.Roles {
			roleNames = append(roleNames, role.Name)
		}
		tok, err := auth.Sign(u.ID, roleNames)
		if err != nil {
			lg.Errorw("token signing failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		sess := models.Session{JTI: tok.JTI, UserID: u.ID, ExpiresAt: tok.ExpiresAt}
		if err := db.Create(&sess).Error; err != nil {
			lg.Errorw("session create failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		rec.Record(r.Context(), &u.ID, models.ActionLogin, nil, nil, audit.LoginSnapshot(email))
		respondJSON(w, http.StatusOK, map[string]any{"token": tok.Token})
	}
}

func Logout(db *gorm.DB, rec *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		now := time.Now()
		db.Model(&models.Session{}).Where("jti = ?", claims.JWTID).Update("revoked_at", now)
		uid := claims.Subject
		rec.Record(r.Context(), &uid, models.ActionLogout, nil, nil, nil)
		respondJSON(w, http.StatusOK, map[string]any{"logged_out": true})
	}
}

func ChangePassword(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.NewPassword == "" {
			respondError(w, http.StatusBadRequest, "new_password required")
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", auth.Subject(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		if auth.CheckPassword(u.PasswordHash, req.CurrentPassword) != nil {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			lg.Errorw("password hash failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		u.PasswordHash = hash
		u.UpdatedAt = time.Now()
		if err := db.Save(&u).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"updated": true})
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := db.Preload("Roles").First(&u, "id = ?", auth.Subject(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"id": u.ID, "email": u.Email, "roles": u.Roles, "is_active": u.IsActive,
		})
	}
}
