package registry

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mockapi/internal/audit"
	"mockapi/internal/mockpath"
	"mockapi/internal/models"
)

type EndpointInput struct {
	Path          string
	Description   string
	AuthProfileID *int64
}

// EndpointUpdate carries a partial update. Path is accepted only when it
// normalizes to the current value; renaming an endpoint is not supported,
// delete and recreate instead. SetAuthentication marks that the
// authentication field was provided (a nil AuthProfileID then clears it).
type EndpointUpdate struct {
	Path              *string
	Description       *string
	AuthProfileID     *int64
	SetAuthentication bool
}

// CreateEndpoint registers a new endpoint under its normalized path. A
// concurrent create for the same path loses against the unique index and
// gets ErrDuplicatePath.
func (s *Store) CreateEndpoint(ctx context.Context, actor Actor, in EndpointInput) (*models.Endpoint, error) {
	path, err := mockpath.Normalize(in.Path)
	if err != nil {
		return nil, err
	}
	if in.AuthProfileID != nil {
		if err := s.checkProfileExists(ctx, *in.AuthProfileID); err != nil {
			return nil, err
		}
	}
	e := models.Endpoint{
		Path:          path,
		Description:   in.Description,
		AuthProfileID: in.AuthProfileID,
		OwnerID:       actor.ID,
		CreatorID:     actor.ID,
	}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicatePath
		}
		return nil, err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionCreate, &e.ID, nil, audit.EndpointSnapshot(&e))
	return &e, nil
}

// GetEndpoint loads one endpoint with its handlers. Non-admin callers can
// only read endpoints they own. The detail read is audited.
func (s *Store) GetEndpoint(ctx context.Context, actor Actor, id int64) (*models.Endpoint, error) {
	var e models.Endpoint
	if err := s.db.WithContext(ctx).Preload("Handlers").First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.Admin && e.OwnerID != actor.ID {
		s.rec.Record(ctx, &actor.ID, models.ActionPermissionDenied, &e.ID, nil, nil)
		return nil, ErrForbidden
	}
	s.rec.Record(ctx, &actor.ID, models.ActionRead, &e.ID, nil, audit.EndpointSnapshot(&e))
	return &e, nil
}

// ListEndpoints returns endpoints visible to the actor, ordered by path.
// Non-admin callers see only their own; admins see all when all is set.
func (s *Store) ListEndpoints(ctx context.Context, actor Actor, all bool) ([]models.Endpoint, error) {
	q := s.db.WithContext(ctx).Order("path")
	if !(all && actor.Admin) {
		q = q.Where("owner_id = ?", actor.ID)
	}
	var eps []models.Endpoint
	if err := q.Find(&eps).Error; err != nil {
		return nil, err
	}
	return eps, nil
}

// UpdateEndpoint applies a partial update. The path is immutable: any value
// that does not normalize to the stored path is rejected.
func (s *Store) UpdateEndpoint(ctx context.Context, actor Actor, id int64, upd EndpointUpdate) (*models.Endpoint, error) {
	var e models.Endpoint
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.Admin && e.OwnerID != actor.ID {
		s.rec.Record(ctx, &actor.ID, models.ActionPermissionDenied, &e.ID, nil, nil)
		return nil, ErrForbidden
	}
	old := audit.EndpointSnapshot(&e)
	if upd.Path != nil {
		p, err := mockpath.Normalize(*upd.Path)
		if err != nil {
			return nil, err
		}
		if p != e.Path {
			return nil, ErrPathImmutable
		}
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.SetAuthentication {
		if upd.AuthProfileID != nil {
			if err := s.checkProfileExists(ctx, *upd.AuthProfileID); err != nil {
				return nil, err
			}
		}
		e.AuthProfileID = upd.AuthProfileID
	}
	e.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&e).Error; err != nil {
		return nil, err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionUpdate, &e.ID, old, audit.EndpointSnapshot(&e))
	return &e, nil
}

// DeleteEndpoint removes the endpoint and cascades to all of its handlers in
// one transaction.
func (s *Store) DeleteEndpoint(ctx context.Context, actor Actor, id int64) error {
	var e models.Endpoint
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !actor.Admin && e.OwnerID != actor.ID {
		s.rec.Record(ctx, &actor.ID, models.ActionPermissionDenied, &e.ID, nil, nil)
		return ErrForbidden
	}
	old := audit.EndpointSnapshot(&e)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint_id = ?", e.ID).Delete(&models.Handler{}).Error; err != nil {
			return err
		}
		return tx.Delete(&e).Error
	})
	if err != nil {
		return err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionDelete, &e.ID, old, nil)
	return nil
}

// FindEndpointByPath resolves a normalized path to its endpoint, loading the
// attached auth profile. Exact match only; used by the serving path.
func (s *Store) FindEndpointByPath(ctx context.Context, normalizedPath string) (*models.Endpoint, error) {
	var e models.Endpoint
	err := s.db.WithContext(ctx).Preload("AuthProfile").First(&e, "path = ?", normalizedPath).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store) checkProfileExists(ctx context.Context, id int64) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AuthProfile{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrProfileNotFound
	}
	return nil
}
