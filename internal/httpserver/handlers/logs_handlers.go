package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mockapi/internal/auth"
	"mockapi/internal/models"
)

// Logs returns recent audit entries, newest first. Regular users see their
// own entries; administrators can pass ?all=1 to see everyone's. Optional
// filters: ?action=CREATE and ?endpoint_id=42.
func Logs(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		q := db.Order("timestamp desc").Limit(200)
		if !(r.URL.Query().Get("all") == "1" && claims.IsAdmin()) {
			q = q.Where("user_id = ?", claims.Subject)
		}
		if action := r.URL.Query().Get("action"); action != "" {
			q = q.Where("action = ?", action)
		}
		if raw := r.URL.Query().Get("endpoint_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, "endpoint_id must be an integer")
				return
			}
			q = q.Where("endpoint_id = ?", id)
		}
		var logs []models.AuditLog
		if err := q.Find(&logs).Error; err != nil {
			lg.Errorw("audit log query failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondJSON(w, http.StatusOK, logs)
	}
}
