package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myflix/myflix-api/internal/access"
	"github.com/myflix/myflix-api/internal/model"
)

func TestFavoritesScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice01", "pw123")

	login, err := f.auth.Login(ctx, model.LoginRequest{Username: "alice01", Password: "pw123"})
	require.NoError(t, err)
	alice, err := f.auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)

	resp, err := f.users.AddFavorite(ctx, alice, "alice01", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, resp.FavoriteMovies)

	got, err := f.users.Get(ctx, alice, "alice01")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, got.FavoriteMovies)

	resp, err = f.users.RemoveFavorite(ctx, alice, "alice01", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, resp.FavoriteMovies)
}

func TestDeleteOtherUserDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice01", "pw123")
	bob := f.register(t, "bob0002", "pw456")

	err := f.users.Delete(ctx, bob, "alice01")
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = f.store.GetByUsername(ctx, "alice01")
	assert.NoError(t, err, "alice01 must survive a denied delete")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthzDecisions.WithLabelValues("delete_user", "deny")))
}

func TestMutationsOfOtherUserDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice01", "pw123")
	bob := f.register(t, "bob0002", "pw456")

	_, err := f.users.Update(ctx, bob, "alice01", model.UserRequest{Username: "alice01", Email: "x@example.com", Password: "x"})
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = f.users.AddFavorite(ctx, bob, "alice01", "m1")
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	_, err = f.users.RemoveFavorite(ctx, bob, "alice01", "m1")
	assert.ErrorIs(t, err, access.ErrPermissionDenied)

	alice, err := f.store.GetByUsername(ctx, "alice01")
	require.NoError(t, err)
	assert.Equal(t, "alice01@example.com", alice.Email)
	assert.Empty(t, alice.FavoriteMovies)
}

func TestPermissionCheckedBeforeValidation(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice01", "pw123")
	bob := f.register(t, "bob0002", "pw456")

	_, err := f.users.Update(context.Background(), bob, "alice01", model.UserRequest{})
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
}

func TestGetOtherUserAllowed(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice01", "pw123")
	bob := f.register(t, "bob0002", "pw456")

	got, err := f.users.Get(context.Background(), bob, "alice01")
	require.NoError(t, err)
	assert.Equal(t, "alice01", got.Username)

	_, err = f.users.Get(context.Background(), bob, "nobody1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.users.Get(context.Background(), nil, "alice01")
	assert.ErrorIs(t, err, access.ErrUnauthenticated)
}

func TestUpdateRehashesPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice01", "pw123")

	resp, err := f.users.Update(ctx, alice, "alice01", model.UserRequest{
		Username: "alice01",
		Email:    "new@example.com",
		Birthday: "1991-05-06",
		Password: "pw456",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Equal(t, "1991-05-06", resp.Birthday)

	_, err = f.auth.Login(ctx, model.LoginRequest{Username: "alice01", Password: "pw123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, model.LoginRequest{Username: "alice01", Password: "pw456"})
	assert.NoError(t, err)
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice01", "pw123")

	_, err := f.users.Update(context.Background(), alice, "alice01", model.UserRequest{Username: "alice01", Email: "bad"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestUpdateRenameOntoTakenUsername(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice01", "pw123")
	f.register(t, "bob0002", "pw456")

	_, err := f.users.Update(context.Background(), alice, "alice01", model.UserRequest{
		Username: "bob0002", Email: "a@example.com", Password: "pw123",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestDeleteSelf(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice01", "pw123")

	require.NoError(t, f.users.Delete(context.Background(), alice, "alice01"))
	assert.ErrorIs(t, f.users.Delete(context.Background(), alice, "alice01"), ErrUserNotFound)
}

func TestAddFavoriteUnknownMovie(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice01", "pw123")

	_, err := f.users.AddFavorite(context.Background(), alice, "alice01", "no-such-movie")
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestFavoritesOfDeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice01", "pw123")
	require.NoError(t, f.store.Delete(ctx, "alice01"))

	_, err := f.users.AddFavorite(ctx, alice, "alice01", "m1")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.users.RemoveFavorite(ctx, alice, "alice01", "m1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(brokenStore{}, nil, testHasher, f.metrics)
	alice := &model.User{Username: "alice01"}

	_, err := svc.Get(context.Background(), alice, "alice01")
	require.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	err = svc.Delete(context.Background(), alice, "alice01")
	assert.ErrorIs(t, err, errStoreDown)
}
