package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Role struct {
	ID   int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	Roles        []Role    `gorm:"many2many:user_roles" json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    string     `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Authentication profile types.
const (
	AuthTypeAPIKey = "API_KEY"
	AuthTypeBasic  = "BASIC"
)

// AuthProfile is a reusable credential set attached to endpoints. Exactly one
// variant is populated: API_KEY carries APIKey, BASIC carries
// BasicAuthUsername plus a bcrypt PasswordHash. The raw password is never
// stored.
type AuthProfile struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	AuthType          string    `gorm:"size:20;not null" json:"auth_type"`
	APIKey            *string   `gorm:"size:128;uniqueIndex" json:"-"`
	BasicAuthUsername *string   `gorm:"size:150" json:"basic_auth_username,omitempty"`
	PasswordHash      *string   `gorm:"size:128" json:"-"`
	OwnerID           string    `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Endpoint is a registered mock API surface keyed by its normalized path.
type Endpoint struct {
	ID            int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Path          string       `gorm:"size:255;uniqueIndex;not null" json:"path"`
	Description   string       `gorm:"type:text" json:"description"`
	AuthProfileID *int64       `gorm:"index" json:"authentication,omitempty"`
	AuthProfile   *AuthProfile `gorm:"foreignKey:AuthProfileID" json:"-"`
	OwnerID       string       `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatorID     string       `gorm:"type:uuid;not null" json:"creator_id"`
	Handlers      []Handler    `gorm:"foreignKey:EndpointID" json:"handlers,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// HTTP methods a handler may be registered for.
var AllowedHTTPMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "OPTIONS": true, "HEAD": true,
}

// Handler is a method-specific canned response owned by one endpoint.
// At most one handler exists per (endpoint, method) pair.
type Handler struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EndpointID         int64     `gorm:"not null;uniqueIndex:idx_handlers_endpoint_method" json:"endpoint_id"`
	HTTPMethod         string    `gorm:"size:10;not null;uniqueIndex:idx_handlers_endpoint_method" json:"http_method"`
	ResponseStatusCode int       `gorm:"not null;default:200" json:"response_status_code"`
	ResponseHeaders    JSONB     `gorm:"type:jsonb" json:"response_headers"`
	ResponseBody       string    `gorm:"type:text" json:"response_body"`
	Description        string    `gorm:"size:255" json:"description"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Headers decodes the configured response headers. A missing or malformed
// value yields an empty map rather than an error.
func (h *Handler) Headers() map[string]string {
	out := map[string]string{}
	if len(h.ResponseHeaders) > 0 {
		_ = json.Unmarshal(h.ResponseHeaders, &out)
	}
	return out
}

// Audit log actions.
const (
	ActionCreate           = "CREATE"
	ActionRead             = "READ"
	ActionUpdate           = "UPDATE"
	ActionDelete           = "DELETE"
	ActionLogin            = "LOGIN"
	ActionLogout           = "LOGOUT"
	ActionAuthFailure      = "AUTH_FAILURE"
	ActionPermissionDenied = "PERMISSION_DENIED"
)

// AuditLog is an append-only record of one action. EndpointID is a plain
// integer snapshot, not a foreign key, so it survives endpoint deletion.
type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *string   `gorm:"type:uuid;index:idx_audit_user_action,priority:1" json:"user_id,omitempty"`
	Action     string    `gorm:"size:20;not null;index:idx_audit_user_action,priority:2;index:idx_audit_endpoint_action,priority:2" json:"action"`
	EndpointID *int64    `gorm:"index:idx_audit_endpoint_action,priority:1" json:"endpoint_id,omitempty"`
	OldValue   JSONB     `gorm:"type:jsonb" json:"old_value,omitempty"`
	NewValue   JSONB     `gorm:"type:jsonb" json:"new_value,omitempty"`
	Timestamp  time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

// BeforeUpdate pins a persisted entry to its first-written state. The guard
// clause makes any UPDATE match zero rows, so late writes are silent no-ops
// rather than errors.
func (AuditLog) BeforeUpdate(tx *gorm.DB) error {
	tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1 = 0"}}})
	return nil
}

// BeforeDelete blocks deletion the same way.
func (AuditLog) BeforeDelete(tx *gorm.DB) error {
	tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1 = 0"}}})
	return nil
}
