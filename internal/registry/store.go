// Package registry owns the persisted mock configuration: endpoints, their
// per-method handlers and the auth profiles that protect them. All uniqueness
// guarantees are delegated to the store's unique indexes, so concurrent
// writers race safely and the loser gets a conflict error.
package registry

import (
	"gorm.io/gorm"

	"mockapi/internal/audit"
)

// Actor identifies the user performing an operation. Identity is always
// passed explicitly, never read from ambient state.
type Actor struct {
	ID    string
	Admin bool
}

type Store struct {
	db  *gorm.DB
	rec *audit.Recorder
}

func NewStore(db *gorm.DB, rec *audit.Recorder) *Store {
	return &Store{db: db, rec: rec}
}
