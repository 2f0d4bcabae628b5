// Package mockserve matches inbound requests against registered endpoints
// and returns their configured canned responses.
package mockserve

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"mockapi/internal/auth"
	"mockapi/internal/models"
)

// APIKeyHeader is the request header carrying the key for API_KEY profiles.
const APIKeyHeader = "X-API-Key"

var (
	// ErrUnauthorized means the request did not satisfy the endpoint's auth
	// profile. Callers get no detail about which part of the credential was
	// wrong.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMisconfiguredProfile means a profile with an unknown auth_type
	// reached the enforcer. That is a data-integrity bug, not a caller error.
	ErrMisconfiguredProfile = errors.New("auth profile has unknown auth type")
)

// CheckAuth validates a request against an endpoint's optional auth profile.
// A nil profile means the endpoint is public. Credential comparisons are
// constant-time.
func CheckAuth(r *http.Request, p *models.AuthProfile) error {
	if p == nil {
		return nil
	}
	switch p.AuthType {
	case models.AuthTypeAPIKey:
		key := r.Header.Get(APIKeyHeader)
		if key == "" || p.APIKey == nil {
			return ErrUnauthorized
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(*p.APIKey)) != 1 {
			return ErrUnauthorized
		}
		return nil
	case models.AuthTypeBasic:
		username, password, ok := r.BasicAuth()
		if !ok || p.BasicAuthUsername == nil || p.PasswordHash == nil {
			return ErrUnauthorized
		}
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(*p.BasicAuthUsername)) == 1
		passOK := auth.CheckPassword(*p.PasswordHash, password) == nil
		if !userOK || !passOK {
			return ErrUnauthorized
		}
		return nil
	default:
		return ErrMisconfiguredProfile
	}
}
