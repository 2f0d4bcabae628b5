package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mockapi/internal/audit"
	"mockapi/internal/models"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Session{},
		&models.AuthProfile{}, &models.Endpoint{}, &models.Handler{},
		&models.AuditLog{},
	))
	rec := audit.NewRecorder(db, zap.NewNop().Sugar())
	return NewStore(db, rec), db
}

var (
	alice = Actor{ID: "7b0e2fce-6f41-4df0-9d5b-0a72cf3f3a01"}
	bob   = Actor{ID: "9d4f1a22-1b7e-4d7a-8a53-55d9f29e6a02"}
	root  = Actor{ID: "1c86a60a-4c2c-43bc-9a5e-dc06cf60fd03", Admin: true}
)

func countEntries(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}
