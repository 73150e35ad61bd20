package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myflix/myflix-api/internal/model"
)

// userStore is the method set shared by every user store implementation.
type userStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, username string, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, username string) error
	AppendFavorite(ctx context.Context, username, movieID string) (*model.User, error)
	RemoveFavorite(ctx context.Context, username, movieID string) (*model.User, error)
}

func newUser(username string) *model.User {
	return &model.User{
		Username:     username,
		PasswordHash: "hash-" + username,
		Email:        username + "@example.com",
		Birthday:     time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
	}
}

func runUserStoreContract(t *testing.T, newStore func(t *testing.T) userStore) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		u := newUser("alice01")
		require.NoError(t, s.Create(ctx, u))
		assert.NotEmpty(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())

		got, err := s.GetByUsername(ctx, "alice01")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "alice01@example.com", got.Email)
		assert.Equal(t, "hash-alice01", got.PasswordHash)
		assert.True(t, u.Birthday.Equal(got.Birthday))
		assert.Empty(t, got.FavoriteMovies)
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("duplicate create", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newUser("alice01")))
		assert.ErrorIs(t, s.Create(ctx, newUser("alice01")), ErrDuplicateUsername)
	})

	t.Run("usernames are case sensitive", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newUser("alice01")))
		require.NoError(t, s.Create(ctx, newUser("ALICE01")))

		_, err := s.GetByUsername(ctx, "Alice01")
		assert.ErrorIs(t, err, ErrUserNotFound)

		got, err := s.GetByUsername(ctx, "ALICE01")
		require.NoError(t, err)
		assert.Equal(t, "ALICE01", got.Username)
	})

	t.Run("concurrent create has one winner", func(t *testing.T) {
		s := newStore(t)

		const workers = 16
		var (
			wg        sync.WaitGroup
			successes atomic.Int32
			conflicts atomic.Int32
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				switch err := s.Create(ctx, newUser("racer01")); err {
				case nil:
					successes.Add(1)
				case ErrDuplicateUsername:
					conflicts.Add(1)
				default:
					t.Errorf("Create() unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load())
		assert.Equal(t, int32(workers-1), conflicts.Load())
	})

	t.Run("update in place", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newUser("alice01")))

		got, err := s.Update(ctx, "alice01", model.UserPatch{
			Username:     "alice01",
			Email:        "new@example.com",
			PasswordHash: "new-hash",
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Email)
		assert.Equal(t, "new-hash", got.PasswordHash)
		assert.True(t, got.Birthday.IsZero())
	})

	t.Run("update rename", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newUser("alice01")))
		_, err := s.AppendFavorite(ctx, "alice01", "m1")
		require.NoError(t, err)

		got, err := s.Update(ctx, "alice01", model.UserPatch{Username: "alice02", Email: "a@example.com", PasswordHash: "h"})
		require.NoError(t, err)
		assert.Equal(t, "alice02", got.Username)
		assert.Equal(t, []string{"m1"}, got.FavoriteMovies)

		_, err = s.GetByUsername(ctx, "alice01")
		assert.ErrorIs(t, err, ErrUserNotFound)
		_, err = s.GetByUsername(ctx, "alice02")
		assert.NoError(t, err)
	})

	t.Run("update rename onto taken username", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newUser("alice01")))
		require.NoError(t, s.Create(ctx, newUser("bob0002")))

		_, err := s.Update(ctx, "alice01", model.UserPatch{Username: "bob0002", Email: "a@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, ErrDuplicateUsername)

		bob, err := s.GetByUsername(ctx, "bob0002")
		require.NoError(t, err)
		assert.Equal(t, "bob0002@example.com", bob.Email)
	})

	t.Run("update missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Update(ctx, "nobody", model.UserPatch{Username: "nobody"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newUser("alice01")))
		require.NoError(t, s.Delete(ctx, "alice01"))
		assert.ErrorIs(t, s.Delete(ctx, "alice01"), ErrUserNotFound)

		_, err := s.GetByUsername(ctx, "alice01")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("favorites keep order and remove all occurrences", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newUser("alice01")))

		for _, id := range []string{"m1", "m2", "m1", "m3"} {
			_, err := s.AppendFavorite(ctx, "alice01", id)
			require.NoError(t, err)
		}
		got, err := s.GetByUsername(ctx, "alice01")
		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2", "m1", "m3"}, got.FavoriteMovies)

		got, err = s.RemoveFavorite(ctx, "alice01", "m1")
		require.NoError(t, err)
		assert.Equal(t, []string{"m2", "m3"}, got.FavoriteMovies)

		got, err = s.RemoveFavorite(ctx, "alice01", "absent")
		require.NoError(t, err)
		assert.Equal(t, []string{"m2", "m3"}, got.FavoriteMovies)
	})

	t.Run("favorites on missing user", func(t *testing.T) {
		s := newStore(t)
		_, err := s.AppendFavorite(ctx, "nobody", "m1")
		assert.ErrorIs(t, err, ErrUserNotFound)
		_, err = s.RemoveFavorite(ctx, "nobody", "m1")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newUser("alice01")))

		const workers = 8
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.AppendFavorite(ctx, "alice01", "m1")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.GetByUsername(ctx, "alice01")
		require.NoError(t, err)
		assert.Len(t, got.FavoriteMovies, workers)
	})
}
