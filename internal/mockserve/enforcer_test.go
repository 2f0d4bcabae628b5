package mockserve

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockapi/internal/auth"
	"mockapi/internal/models"
)

func apiKeyProfile(key string) *models.AuthProfile {
	return &models.AuthProfile{ID: 1, Name: "key", AuthType: models.AuthTypeAPIKey, APIKey: &key}
}

func basicProfile(t *testing.T, username, password string) *models.AuthProfile {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &models.AuthProfile{
		ID: 2, Name: "basic", AuthType: models.AuthTypeBasic,
		BasicAuthUsername: &username, PasswordHash: &hash,
	}
}

func TestCheckAuthPublicEndpoint(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	assert.NoError(t, CheckAuth(r, nil))
}

func TestCheckAuthAPIKey(t *testing.T) {
	profile := apiKeyProfile("secret123")

	r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	r.Header.Set(APIKeyHeader, "secret123")
	assert.NoError(t, CheckAuth(r, profile))

	cases := map[string]string{
		"missing":     "",
		"wrong":       "invalid-key-12345",
		"one flipped": "secret124",
		"prefix":      "secret12",
		"suffix":      "secret1234",
	}
	for name, key := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if key != "" {
				r.Header.Set(APIKeyHeader, key)
			}
			assert.ErrorIs(t, CheckAuth(r, profile), ErrUnauthorized)
		})
	}
}

func TestCheckAuthBasic(t *testing.T) {
	profile := basicProfile(t, "partner", "s3cret")

	r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	r.SetBasicAuth("partner", "s3cret")
	assert.NoError(t, CheckAuth(r, profile))

	t.Run("wrong password", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		r.SetBasicAuth("partner", "wrong")
		assert.ErrorIs(t, CheckAuth(r, profile), ErrUnauthorized)
	})
	t.Run("wrong username", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		r.SetBasicAuth("stranger", "s3cret")
		assert.ErrorIs(t, CheckAuth(r, profile), ErrUnauthorized)
	})
	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		assert.ErrorIs(t, CheckAuth(r, profile), ErrUnauthorized)
	})
	t.Run("bearer scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		r.Header.Set("Authorization", "Bearer sometoken")
		assert.ErrorIs(t, CheckAuth(r, profile), ErrUnauthorized)
	})
	t.Run("malformed base64", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		r.Header.Set("Authorization", "Basic not-valid-base64!!!")
		assert.ErrorIs(t, CheckAuth(r, profile), ErrUnauthorized)
	})
	t.Run("credentials swapped", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		creds := base64.StdEncoding.EncodeToString([]byte("s3cret:partner"))
		r.Header.Set("Authorization", "Basic "+creds)
		assert.ErrorIs(t, CheckAuth(r, profile), ErrUnauthorized)
	})
}

func TestCheckAuthUnknownTypeIsMisconfiguration(t *testing.T) {
	profile := &models.AuthProfile{ID: 3, Name: "odd", AuthType: "BEARER"}
	r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	err := CheckAuth(r, profile)
	assert.ErrorIs(t, err, ErrMisconfiguredProfile)
	assert.NotErrorIs(t, err, ErrUnauthorized, "misconfiguration must not be treated as public")
}

func TestCheckAuthIncompleteProfiles(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	r.Header.Set(APIKeyHeader, "anything")
	assert.ErrorIs(t, CheckAuth(r, &models.AuthProfile{AuthType: models.AuthTypeAPIKey}), ErrUnauthorized)

	r2 := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	r2.SetBasicAuth("partner", "s3cret")
	assert.ErrorIs(t, CheckAuth(r2, &models.AuthProfile{AuthType: models.AuthTypeBasic}), ErrUnauthorized)
}
