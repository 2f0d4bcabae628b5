// Package audit appends immutable audit log entries for every mutation,
// authentication event and permission denial in the system.
package audit

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mockapi/internal/models"
)

// Recorder writes audit entries. Writes are best-effort: a failed insert is
// logged at warn level and never surfaced to the caller, so the primary
// operation's outcome stays independent of the audit trail.
type Recorder struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func NewRecorder(db *gorm.DB, lg *zap.SugaredLogger) *Recorder {
	return &Recorder{db: db, lg: lg}
}

// Record appends one entry. userID is nil for anonymous actions, endpointID
// is nil for actions not tied to an endpoint. oldValue is nil for CREATE,
// newValue is nil for DELETE.
func (r *Recorder) Record(ctx context.Context, userID *string, action string, endpointID *int64, oldValue, newValue models.JSONB) {
	entry := models.AuditLog{
		UserID:     userID,
		Action:     action,
		EndpointID: endpointID,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.lg.Warnw("audit write failed", "action", action, "error", err)
	}
}
