package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockapi/internal/mockpath"
	"mockapi/internal/models"
)

func TestCreateEndpointNormalizesPath(t *testing.T) {
	store, _ := newTestStore(t)
	ep, err := store.CreateEndpoint(context.Background(), alice, EndpointInput{Path: "/api/users/"})
	require.NoError(t, err)
	assert.Equal(t, "api/users", ep.Path)
	assert.Equal(t, alice.ID, ep.OwnerID)
	assert.Equal(t, alice.ID, ep.CreatorID)
}

func TestCreateEndpointRejectsEmptyPath(t *testing.T) {
	store, db := newTestStore(t)
	for _, p := range []string{"", "/", "///"} {
		_, err := store.CreateEndpoint(context.Background(), alice, EndpointInput{Path: p})
		assert.ErrorIs(t, err, mockpath.ErrEmptyPath)
	}
	var n int64
	db.Model(&models.Endpoint{}).Count(&n)
	assert.Zero(t, n, "rejected creates must leave no records")
}

func TestCreateEndpointDuplicatePath(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	_, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "api/users"})
	require.NoError(t, err)

	// Same path spelled differently still collides after normalization.
	_, err = store.CreateEndpoint(ctx, alice, EndpointInput{Path: "/api//users/"})
	assert.ErrorIs(t, err, ErrDuplicatePath)

	var n int64
	db.Model(&models.Endpoint{}).Count(&n)
	assert.EqualValues(t, 1, n)
	assert.EqualValues(t, 1, countEntries(t, db, models.ActionCreate))
}

func TestCreateEndpointRejectsUnknownProfile(t *testing.T) {
	store, _ := newTestStore(t)
	missing := int64(999)
	_, err := store.CreateEndpoint(context.Background(), alice, EndpointInput{Path: "x", AuthProfileID: &missing})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUpdateEndpointPathImmutable(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	ep, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "api/users"})
	require.NoError(t, err)

	renamed := "api/other"
	_, err = store.UpdateEndpoint(ctx, alice, ep.ID, EndpointUpdate{Path: &renamed})
	assert.ErrorIs(t, err, ErrPathImmutable)

	// An equivalent spelling of the current path is a no-op, not an error.
	same := "/api/users/"
	got, err := store.UpdateEndpoint(ctx, alice, ep.ID, EndpointUpdate{Path: &same})
	require.NoError(t, err)
	assert.Equal(t, "api/users", got.Path)
}

func TestUpdateEndpointFields(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	ep, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "api/users"})
	require.NoError(t, err)
	profile, err := store.CreateAuthProfile(ctx, alice, AuthProfileInput{Name: "key", AuthType: models.AuthTypeAPIKey})
	require.NoError(t, err)

	desc := "user fixtures"
	got, err := store.UpdateEndpoint(ctx, alice, ep.ID, EndpointUpdate{
		Description:       &desc,
		AuthProfileID:     &profile.ID,
		SetAuthentication: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "user fixtures", got.Description)
	require.NotNil(t, got.AuthProfileID)
	assert.Equal(t, profile.ID, *got.AuthProfileID)

	// Clearing authentication makes the endpoint public again.
	got, err = store.UpdateEndpoint(ctx, alice, ep.ID, EndpointUpdate{SetAuthentication: true})
	require.NoError(t, err)
	assert.Nil(t, got.AuthProfileID)

	assert.EqualValues(t, 2, countEntries(t, db, models.ActionUpdate))
}

func TestUpdateEndpointNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.UpdateEndpoint(context.Background(), alice, 42, EndpointUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEndpointCascadesHandlers(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	ep, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "api/users"})
	require.NoError(t, err)
	for _, m := range []string{"GET", "POST", "DELETE"} {
		_, err := store.CreateHandler(ctx, alice, ep.ID, HandlerInput{HTTPMethod: m})
		require.NoError(t, err)
	}

	require.NoError(t, store.DeleteEndpoint(ctx, alice, ep.ID))

	var n int64
	db.Model(&models.Handler{}).Where("endpoint_id = ?", ep.ID).Count(&n)
	assert.Zero(t, n)
	assert.ErrorIs(t, store.DeleteEndpoint(ctx, alice, ep.ID), ErrNotFound)
}

func TestDeleteFreesPathForReuse(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	ep, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "api/users"})
	require.NoError(t, err)
	require.NoError(t, store.DeleteEndpoint(ctx, alice, ep.ID))

	again, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "api/users"})
	require.NoError(t, err)
	assert.NotEqual(t, ep.ID, again.ID)
}

func TestGetEndpointOwnershipAndAudit(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	ep, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "api/users"})
	require.NoError(t, err)

	_, err = store.GetEndpoint(ctx, bob, ep.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.EqualValues(t, 1, countEntries(t, db, models.ActionPermissionDenied))

	got, err := store.GetEndpoint(ctx, root, ep.ID)
	require.NoError(t, err)
	assert.Equal(t, ep.Path, got.Path)
	assert.EqualValues(t, 1, countEntries(t, db, models.ActionRead))
}

func TestListEndpointsScoping(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	_, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "a"})
	require.NoError(t, err)
	_, err = store.CreateEndpoint(ctx, bob, EndpointInput{Path: "b"})
	require.NoError(t, err)

	mine, err := store.ListEndpoints(ctx, alice, false)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	// all=1 only widens the view for admins.
	stillMine, err := store.ListEndpoints(ctx, alice, true)
	require.NoError(t, err)
	assert.Len(t, stillMine, 1)

	everything, err := store.ListEndpoints(ctx, root, true)
	require.NoError(t, err)
	assert.Len(t, everything, 2)
}

func TestFindEndpointByPathExactMatch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	_, err := store.CreateEndpoint(ctx, alice, EndpointInput{Path: "api/users"})
	require.NoError(t, err)

	ep, err := store.FindEndpointByPath(ctx, "api/users")
	require.NoError(t, err)
	assert.Equal(t, "api/users", ep.Path)

	_, err = store.FindEndpointByPath(ctx, "api/Users")
	assert.ErrorIs(t, err, ErrNotFound, "matching is case-sensitive")
	_, err = store.FindEndpointByPath(ctx, "api/users/123")
	assert.ErrorIs(t, err, ErrNotFound, "no prefix matching")
}
