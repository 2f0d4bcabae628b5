package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockapi/internal/auth"
	"mockapi/internal/models"
)

func TestCreateAPIKeyProfileGeneratesKey(t *testing.T) {
	store, _ := newTestStore(t)
	p, err := store.CreateAuthProfile(context.Background(), alice, AuthProfileInput{
		Name: "service key", AuthType: "api_key",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AuthTypeAPIKey, p.AuthType)
	require.NotNil(t, p.APIKey)
	assert.Greater(t, len(*p.APIKey), 20)
	assert.Nil(t, p.BasicAuthUsername)
	assert.Nil(t, p.PasswordHash)
}

func TestCreateAPIKeyProfileCustomKey(t *testing.T) {
	store, _ := newTestStore(t)
	key := "secret123"
	p, err := store.CreateAuthProfile(context.Background(), alice, AuthProfileInput{
		Name: "custom", AuthType: models.AuthTypeAPIKey, APIKey: &key,
	})
	require.NoError(t, err)
	require.NotNil(t, p.APIKey)
	assert.Equal(t, "secret123", *p.APIKey)
}

func TestCreateBasicProfileHashesPassword(t *testing.T) {
	store, _ := newTestStore(t)
	user, pass := "partner", "s3cret"
	p, err := store.CreateAuthProfile(context.Background(), alice, AuthProfileInput{
		Name: "partner basic", AuthType: models.AuthTypeBasic,
		BasicAuthUsername: &user, Password: &pass,
	})
	require.NoError(t, err)
	assert.Nil(t, p.APIKey)
	require.NotNil(t, p.PasswordHash)
	assert.NotEqual(t, "s3cret", *p.PasswordHash)
	assert.NoError(t, auth.CheckPassword(*p.PasswordHash, "s3cret"))
}

func TestCreateBasicProfileRequiresCredentials(t *testing.T) {
	store, _ := newTestStore(t)
	user := "partner"
	_, err := store.CreateAuthProfile(context.Background(), alice, AuthProfileInput{
		Name: "incomplete", AuthType: models.AuthTypeBasic, BasicAuthUsername: &user,
	})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestCreateProfileDuplicateName(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	_, err := store.CreateAuthProfile(ctx, alice, AuthProfileInput{Name: "key", AuthType: models.AuthTypeAPIKey})
	require.NoError(t, err)
	_, err = store.CreateAuthProfile(ctx, alice, AuthProfileInput{Name: "key", AuthType: models.AuthTypeAPIKey})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCreateProfileUnknownType(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.CreateAuthProfile(context.Background(), alice, AuthProfileInput{Name: "x", AuthType: "BEARER"})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestSwitchingTypeClearsOtherVariant(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	p, err := store.CreateAuthProfile(ctx, alice, AuthProfileInput{Name: "switcher", AuthType: models.AuthTypeAPIKey})
	require.NoError(t, err)
	require.NotNil(t, p.APIKey)

	basic := models.AuthTypeBasic
	user, pass := "partner", "s3cret"
	p, err = store.UpdateAuthProfile(ctx, alice, p.ID, AuthProfileUpdate{
		AuthType: &basic, BasicAuthUsername: &user, Password: &pass,
	})
	require.NoError(t, err)
	assert.Nil(t, p.APIKey)
	require.NotNil(t, p.BasicAuthUsername)

	apiKey := models.AuthTypeAPIKey
	p, err = store.UpdateAuthProfile(ctx, alice, p.ID, AuthProfileUpdate{AuthType: &apiKey})
	require.NoError(t, err)
	require.NotNil(t, p.APIKey, "key regenerated on switch back")
	assert.Nil(t, p.BasicAuthUsername)
	assert.Nil(t, p.PasswordHash)
}

func TestRotateAPIKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	p, err := store.CreateAuthProfile(ctx, alice, AuthProfileInput{Name: "rotating", AuthType: models.AuthTypeAPIKey})
	require.NoError(t, err)
	oldKey := *p.APIKey

	newKey := "newkey"
	p, err = store.UpdateAuthProfile(ctx, alice, p.ID, AuthProfileUpdate{APIKey: &newKey})
	require.NoError(t, err)
	assert.Equal(t, "newkey", *p.APIKey)
	assert.NotEqual(t, oldKey, *p.APIKey)
}

func TestDeleteProfileDetachesEndpoints(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	p, err := store.CreateAuthProfile(ctx, alice, AuthProfileInput{Name: "key", AuthType: models.AuthTypeAPIKey})
	require.NoError(t, err)
	ep, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "api/users", AuthProfileID: &p.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteAuthProfile(ctx, alice, p.ID))

	var got models.Endpoint
	require.NoError(t, db.First(&got, "id = ?", ep.ID).Error)
	assert.Nil(t, got.AuthProfileID, "endpoint becomes public, not deleted")
}

func TestProfileOwnershipEnforced(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	p, err := store.CreateAuthProfile(ctx, alice, AuthProfileInput{Name: "key", AuthType: models.AuthTypeAPIKey})
	require.NoError(t, err)

	_, err = store.GetAuthProfile(ctx, bob, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, store.DeleteAuthProfile(ctx, bob, p.ID), ErrForbidden)

	_, err = store.GetAuthProfile(ctx, root, p.ID)
	assert.NoError(t, err)
}

func TestGeneratedKeysAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		k := GenerateAPIKey()
		assert.False(t, seen[k])
		seen[k] = true
	}
}
