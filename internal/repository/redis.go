package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/myflix/myflix-api/internal/model"
)

const (
	userKeyPrefix = "myflix:user:"
	maxTxAttempts = 8
)

// ErrTxContention is returned when an optimistic transaction keeps losing
// to concurrent writers of the same user document.
var ErrTxContention = errors.New("too much contention on user document")

// RedisConfig holds the connection settings of the Redis store.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisClient connects to Redis and verifies the server answers.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// userDocument is the JSON form of a user stored under one Redis key.
type userDocument struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"password_hash"`
	Email          string    `json:"email"`
	Birthday       time.Time `json:"birthday,omitzero"`
	FavoriteMovies []string  `json:"favorite_movies"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toDocument(u *model.User) userDocument {
	return userDocument(*u)
}

func (d userDocument) user() *model.User {
	u := model.User(d)
	return &u
}

// RedisUserStore keeps each user as a JSON document keyed by username.
// Create relies on SETNX for uniqueness; read-modify-write operations run as
// WATCH/MULTI transactions.
type RedisUserStore struct {
	client *redis.Client
}

// NewRedisUserStore creates a new RedisUserStore.
func NewRedisUserStore(client *redis.Client) *RedisUserStore {
	return &RedisUserStore{client: client}
}

func userKey(username string) string {
	return userKeyPrefix + username
}

func (s *RedisUserStore) Create(ctx context.Context, user *model.User) error {
	prepareNewUser(user)

	data, err := json.Marshal(toDocument(user))
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, userKey(user.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return ErrDuplicateUsername
	}
	return nil
}

func (s *RedisUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return load(ctx, s.client, username)
}

func (s *RedisUserStore) Update(ctx context.Context, username string, patch model.UserPatch) (*model.User, error) {
	oldKey, newKey := userKey(username), userKey(patch.Username)

	var updated *model.User
	err := s.transact(ctx, func(tx *redis.Tx) error {
		user, err := load(ctx, tx, username)
		if err != nil {
			return err
		}
		if newKey != oldKey {
			n, err := tx.Exists(ctx, newKey).Result()
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrDuplicateUsername
			}
		}

		patch.Apply(user)
		user.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(toDocument(user))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if newKey != oldKey {
				pipe.Del(ctx, oldKey)
			}
			pipe.Set(ctx, newKey, data, 0)
			return nil
		})
		updated = user
		return err
	}, oldKey, newKey)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *RedisUserStore) Delete(ctx context.Context, username string) error {
	n, err := s.client.Del(ctx, userKey(username)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *RedisUserStore) AppendFavorite(ctx context.Context, username, movieID string) (*model.User, error) {
	return s.mutate(ctx, username, func(u *model.User) {
		u.FavoriteMovies = append(u.FavoriteMovies, movieID)
	})
}

func (s *RedisUserStore) RemoveFavorite(ctx context.Context, username, movieID string) (*model.User, error) {
	return s.mutate(ctx, username, func(u *model.User) {
		u.FavoriteMovies = removeAll(u.FavoriteMovies, movieID)
	})
}

func (s *RedisUserStore) mutate(ctx context.Context, username string, fn func(*model.User)) (*model.User, error) {
	key := userKey(username)

	var updated *model.User
	err := s.transact(ctx, func(tx *redis.Tx) error {
		user, err := load(ctx, tx, username)
		if err != nil {
			return err
		}

		fn(user)
		user.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(toDocument(user))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		updated = user
		return err
	}, key)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// transact runs fn under WATCH on keys, retrying when another client
// modified a watched key between the read and EXEC.
func (s *RedisUserStore) transact(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for range maxTxAttempts {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTxContention
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c getter, username string) (*model.User, error) {
	data, err := c.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var doc userDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding user document %q: %w", username, err)
	}
	return doc.user(), nil
}
