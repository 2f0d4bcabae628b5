package registry

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"mockapi/internal/audit"
	"mockapi/internal/models"
)

type HandlerInput struct {
	HTTPMethod         string
	ResponseStatusCode int
	ResponseHeaders    map[string]string
	ResponseBody       string
	Description        string
}

// HandlerUpdate carries a partial update. HTTPMethod is accepted only when
// it matches the stored method; the method is immutable after creation.
type HandlerUpdate struct {
	HTTPMethod         *string
	ResponseStatusCode *int
	ResponseHeaders    map[string]string
	ResponseBody       *string
	Description        *string
}

func encodeHeaders(h map[string]string) models.JSONB {
	if h == nil {
		h = map[string]string{}
	}
	b, _ := json.Marshal(h)
	return models.JSONB(b)
}

func validStatus(code int) bool {
	return code >= 100 && code <= 599
}

// CreateHandler attaches a method-specific response definition to an
// endpoint. The method is upper-cased before the duplicate check; a second
// handler for the same (endpoint, method) pair gets ErrDuplicateMethod.
func (s *Store) CreateHandler(ctx context.Context, actor Actor, endpointID int64, in HandlerInput) (*models.Handler, error) {
	method := strings.ToUpper(strings.TrimSpace(in.HTTPMethod))
	if !models.AllowedHTTPMethods[method] {
		return nil, ErrInvalidMethod
	}
	status := in.ResponseStatusCode
	if status == 0 {
		status = 200
	}
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}
	ep, err := s.ownedEndpoint(ctx, actor, endpointID)
	if err != nil {
		return nil, err
	}
	h := models.Handler{
		EndpointID:         ep.ID,
		HTTPMethod:         method,
		ResponseStatusCode: status,
		ResponseHeaders:    encodeHeaders(in.ResponseHeaders),
		ResponseBody:       in.ResponseBody,
		Description:        in.Description,
	}
	if err := s.db.WithContext(ctx).Create(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateMethod
		}
		return nil, err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionCreate, &ep.ID, nil, audit.HandlerSnapshot(&h))
	return &h, nil
}

// UpdateHandler applies a partial update to a handler's response definition.
func (s *Store) UpdateHandler(ctx context.Context, actor Actor, id int64, upd HandlerUpdate) (*models.Handler, error) {
	h, err := s.handlerForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := audit.HandlerSnapshot(h)
	if upd.HTTPMethod != nil && strings.ToUpper(strings.TrimSpace(*upd.HTTPMethod)) != h.HTTPMethod {
		return nil, ErrMethodImmutable
	}
	if upd.ResponseStatusCode != nil {
		if !validStatus(*upd.ResponseStatusCode) {
			return nil, ErrInvalidStatus
		}
		h.ResponseStatusCode = *upd.ResponseStatusCode
	}
	if upd.ResponseHeaders != nil {
		h.ResponseHeaders = encodeHeaders(upd.ResponseHeaders)
	}
	if upd.ResponseBody != nil {
		h.ResponseBody = *upd.ResponseBody
	}
	if upd.Description != nil {
		h.Description = *upd.Description
	}
	h.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(h).Error; err != nil {
		return nil, err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionUpdate, &h.EndpointID, old, audit.HandlerSnapshot(h))
	return h, nil
}

// DeleteHandler removes one handler. Sibling handlers are untouched.
func (s *Store) DeleteHandler(ctx context.Context, actor Actor, id int64) error {
	h, err := s.handlerForActor(ctx, actor, id)
	if err != nil {
		return err
	}
	old := audit.HandlerSnapshot(h)
	if err := s.db.WithContext(ctx).Delete(h).Error; err != nil {
		return err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionDelete, &h.EndpointID, old, nil)
	return nil
}

// FindHandler resolves the handler for an endpoint and upper-cased method.
// Used by the serving path; not audited.
func (s *Store) FindHandler(ctx context.Context, endpointID int64, method string) (*models.Handler, error) {
	var h models.Handler
	err := s.db.WithContext(ctx).
		First(&h, "endpoint_id = ? AND http_method = ?", endpointID, strings.ToUpper(method)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// AllowedMethods returns the sorted set of methods configured on an endpoint,
// for the Allow header on 405 responses.
func (s *Store) AllowedMethods(ctx context.Context, endpointID int64) ([]string, error) {
	var methods []string
	err := s.db.WithContext(ctx).Model(&models.Handler{}).
		Where("endpoint_id = ?", endpointID).
		Pluck("http_method", &methods).Error
	if err != nil {
		return nil, err
	}
	sort.Strings(methods)
	return methods, nil
}

func (s *Store) handlerForActor(ctx context.Context, actor Actor, id int64) (*models.Handler, error) {
	var h models.Handler
	if err := s.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.ownedEndpoint(ctx, actor, h.EndpointID); err != nil {
		return nil, err
	}
	return &h, nil
}

// ownedEndpoint loads an endpoint and enforces ownership without emitting a
// READ entry; mutations audit themselves.
func (s *Store) ownedEndpoint(ctx context.Context, actor Actor, id int64) (*models.Endpoint, error) {
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
	return &e, nil
}
