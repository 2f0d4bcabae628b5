package audit

import (
	"encoding/json"
	"time"

	"mockapi/internal/models"
)

// Snapshot builders enumerate exactly the fields that may appear in an audit
// entry. Secrets (API keys, password hashes) are never serialized; the Basic
// auth username is deliberately included since it is not a credential on its
// own.

func marshal(v map[string]any) models.JSONB {
	b, _ := json.Marshal(v)
	return models.JSONB(b)
}

func EndpointSnapshot(e *models.Endpoint) models.JSONB {
	if e == nil {
		return nil
	}
	return marshal(map[string]any{
		"id":             e.ID,
		"path":           e.Path,
		"description":    e.Description,
		"authentication": e.AuthProfileID,
		"owner_id":       e.OwnerID,
		"creator_id":     e.CreatorID,
		"created_at":     e.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":     e.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func HandlerSnapshot(h *models.Handler) models.JSONB {
	if h == nil {
		return nil
	}
	return marshal(map[string]any{
		"id":                   h.ID,
		"endpoint_id":          h.EndpointID,
		"http_method":          h.HTTPMethod,
		"response_status_code": h.ResponseStatusCode,
		"response_headers":     h.Headers(),
		"response_body":        h.ResponseBody,
		"description":          h.Description,
	})
}

func AuthProfileSnapshot(p *models.AuthProfile) models.JSONB {
	if p == nil {
		return nil
	}
	return marshal(map[string]any{
		"id":                  p.ID,
		"name":                p.Name,
		"auth_type":           p.AuthType,
		"basic_auth_username": p.BasicAuthUsername,
		"owner_id":            p.OwnerID,
	})
}

func UserSnapshot(u *models.User) models.JSONB {
	if u == nil {
		return nil
	}
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name)
	}
	return marshal(map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"is_active": u.IsActive,
		"roles":     roles,
	})
}

// LoginSnapshot records who a login attempt was for. Passwords are never
// serialized.
func LoginSnapshot(email string) models.JSONB {
	return marshal(map[string]any{"email": email})
}

// AccessSnapshot describes one request served (or rejected) on the mock
// serving path.
func AccessSnapshot(method, path string, status int) models.JSONB {
	return marshal(map[string]any{
		"http_method": method,
		"path":        path,
		"status":      status,
	})
}

// AuthFailureSnapshot records a failed authentication attempt. It carries the
// auth type but never the submitted credential.
func AuthFailureSnapshot(method, path, authType string) models.JSONB {
	return marshal(map[string]any{
		"http_method": method,
		"path":        path,
		"auth_type":   authType,
	})
}
