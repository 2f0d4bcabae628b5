package registry

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"mockapi/internal/audit"
	"mockapi/internal/auth"
	"mockapi/internal/models"
)

type AuthProfileInput struct {
	Name              string
	AuthType          string
	APIKey            *string
	BasicAuthUsername *string
	Password          *string
}

type AuthProfileUpdate struct {
	Name              *string
	AuthType          *string
	APIKey            *string
	BasicAuthUsername *string
	Password          *string
}

// GenerateAPIKey returns a URL-safe random key. 40 bytes of entropy, same
// strength as the keys the system has always issued.
func GenerateAPIKey() string {
	b := make([]byte, 40)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// CreateAuthProfile stores a credential set. For API_KEY profiles the key is
// generated server-side when omitted. For BASIC profiles the password is
// hashed immediately; the raw value is discarded.
func (s *Store) CreateAuthProfile(ctx context.Context, actor Actor, in AuthProfileInput) (*models.AuthProfile, error) {
	p := models.AuthProfile{
		Name:     strings.TrimSpace(in.Name),
		AuthType: strings.ToUpper(strings.TrimSpace(in.AuthType)),
		OwnerID:  actor.ID,
	}
	if p.Name == "" {
		return nil, ErrInvalidProfile
	}
	switch p.AuthType {
	case models.AuthTypeAPIKey:
		if in.APIKey != nil && *in.APIKey != "" {
			p.APIKey = in.APIKey
		} else {
			key := GenerateAPIKey()
			p.APIKey = &key
		}
	case models.AuthTypeBasic:
		if in.BasicAuthUsername == nil || *in.BasicAuthUsername == "" ||
			in.Password == nil || *in.Password == "" {
			return nil, ErrInvalidProfile
		}
		p.BasicAuthUsername = in.BasicAuthUsername
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = &hash
	default:
		return nil, ErrInvalidProfile
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionCreate, nil, nil, audit.AuthProfileSnapshot(&p))
	return &p, nil
}

// GetAuthProfile loads one profile; non-admin callers only see their own.
func (s *Store) GetAuthProfile(ctx context.Context, actor Actor, id int64) (*models.AuthProfile, error) {
	p, err := s.profileForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionRead, nil, nil, audit.AuthProfileSnapshot(p))
	return p, nil
}

func (s *Store) ListAuthProfiles(ctx context.Context, actor Actor, all bool) ([]models.AuthProfile, error) {
	q := s.db.WithContext(ctx).Order("name")
	if !(all && actor.Admin) {
		q = q.Where("owner_id = ?", actor.ID)
	}
	var ps []models.AuthProfile
	if err := q.Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// UpdateAuthProfile applies a partial update. Switching auth_type clears the
// previous variant's fields so a profile never carries both credential sets.
func (s *Store) UpdateAuthProfile(ctx context.Context, actor Actor, id int64, upd AuthProfileUpdate) (*models.AuthProfile, error) {
	p, err := s.profileForActor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := audit.AuthProfileSnapshot(p)
	if upd.Name != nil && *upd.Name != "" {
		p.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.AuthType != nil {
		p.AuthType = strings.ToUpper(strings.TrimSpace(*upd.AuthType))
	}
	switch p.AuthType {
	case models.AuthTypeAPIKey:
		p.BasicAuthUsername = nil
		p.PasswordHash = nil
		if upd.APIKey != nil && *upd.APIKey != "" {
			p.APIKey = upd.APIKey
		} else if p.APIKey == nil {
			key := GenerateAPIKey()
			p.APIKey = &key
		}
	case models.AuthTypeBasic:
		p.APIKey = nil
		if upd.BasicAuthUsername != nil && *upd.BasicAuthUsername != "" {
			p.BasicAuthUsername = upd.BasicAuthUsername
		}
		if upd.Password != nil && *upd.Password != "" {
			hash, err := auth.HashPassword(*upd.Password)
			if err != nil {
				return nil, err
			}
			p.PasswordHash = &hash
		}
		if p.BasicAuthUsername == nil || p.PasswordHash == nil {
			return nil, ErrInvalidProfile
		}
	default:
		return nil, ErrInvalidProfile
	}
	p.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionUpdate, nil, old, audit.AuthProfileSnapshot(p))
	return p, nil
}

// DeleteAuthProfile removes a profile and detaches it from any endpoints
// referencing it: those endpoints become public, they are not deleted.
func (s *Store) DeleteAuthProfile(ctx context.Context, actor Actor, id int64) error {
	p, err := s.profileForActor(ctx, actor, id)
	if err != nil {
		return err
	}
	old := audit.AuthProfileSnapshot(p)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Endpoint{}).
			Where("auth_profile_id = ?", p.ID).
			Update("auth_profile_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
	if err != nil {
		return err
	}
	s.rec.Record(ctx, &actor.ID, models.ActionDelete, nil, old, nil)
	return nil
}

func (s *Store) profileForActor(ctx context.Context, actor Actor, id int64) (*models.AuthProfile, error) {
	var p models.AuthProfile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.Admin && p.OwnerID != actor.ID {
		s.rec.Record(ctx, &actor.ID, models.ActionPermissionDenied, nil, nil, nil)
		return nil, ErrForbidden
	}
	return &p, nil
}
