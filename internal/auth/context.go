package auth

import (
	"context"
)

type ctxKey string

const userKey ctxKey = "userClaims"

// AdminRole is the role name granting access to all records and the admin
// user-management operations.
const AdminRole = "Administrator"

type Claims struct {
	Subject string
	Roles   []string
	JWTID   string
}

func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c Claims) IsAdmin() bool {
	return c.HasRole(AdminRole)
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, userKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(userKey).(Claims); ok {
		return v
	}
	return Claims{}
}

func Subject(ctx context.Context) string {
	return FromContext(ctx).Subject
}
