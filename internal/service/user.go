package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/myflix/myflix-api/internal/access"
	"github.com/myflix/myflix-api/internal/metrics"
	"github.com/myflix/myflix-api/internal/model"
	"github.com/myflix/myflix-api/internal/repository"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrMovieNotFound = errors.New("movie not found")
)

// UserService handles profile and favorites operations on behalf of an
// authenticated requester. Every operation is checked by the access guard
// before the store is touched.
type UserService struct {
	users    UserStore
	movies   MovieCatalog
	hasher   PasswordHasher
	validate *validator.Validate
	metrics  *metrics.Metrics
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, movies MovieCatalog, hasher PasswordHasher, m *metrics.Metrics) *UserService {
	return &UserService{
		users:    users,
		movies:   movies,
		hasher:   hasher,
		validate: newValidator(),
		metrics:  m,
	}
}

// Get returns the profile of username.
func (s *UserService) Get(ctx context.Context, requester *model.User, username string) (model.UserResponse, error) {
	if err := authorize(s.metrics, requester, username, access.ReadUser); err != nil {
		return model.UserResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return model.UserResponse{}, userError(err, username)
	}

	return model.NewUserResponse(user), nil
}

// Update replaces the profile of username. The password is re-hashed.
func (s *UserService) Update(ctx context.Context, requester *model.User, username string, req model.UserRequest) (model.UserResponse, error) {
	if err := authorize(s.metrics, requester, username, access.UpdateUser); err != nil {
		return model.UserResponse{}, err
	}

	birthday, err := validateUserRequest(s.validate, req)
	if err != nil {
		return model.UserResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.UserResponse{}, err
	}

	user, err := s.users.Update(ctx, username, model.UserPatch{
		Username:     req.Username,
		Email:        req.Email,
		Birthday:     birthday,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return model.UserResponse{}, ErrUsernameTaken
		}
		return model.UserResponse{}, userError(err, username)
	}

	return model.NewUserResponse(user), nil
}

// Delete removes the account of username.
func (s *UserService) Delete(ctx context.Context, requester *model.User, username string) error {
	if err := authorize(s.metrics, requester, username, access.DeleteUser); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, username); err != nil {
		return userError(err, username)
	}
	return nil
}

// AddFavorite appends movieID to the favorites of username. The movie must exist.
func (s *UserService) AddFavorite(ctx context.Context, requester *model.User, username, movieID string) (model.UserResponse, error) {
	if err := authorize(s.metrics, requester, username, access.AddFavorite); err != nil {
		return model.UserResponse{}, err
	}

	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return model.UserResponse{}, ErrMovieNotFound
		}
		return model.UserResponse{}, fmt.Errorf("loading movie %q: %w", movieID, err)
	}

	user, err := s.users.AppendFavorite(ctx, username, movieID)
	if err != nil {
		return model.UserResponse{}, userError(err, username)
	}

	return model.NewUserResponse(user), nil
}

// RemoveFavorite removes every occurrence of movieID from the favorites of username.
func (s *UserService) RemoveFavorite(ctx context.Context, requester *model.User, username, movieID string) (model.UserResponse, error) {
	if err := authorize(s.metrics, requester, username, access.RemoveFavorite); err != nil {
		return model.UserResponse{}, err
	}

	user, err := s.users.RemoveFavorite(ctx, username, movieID)
	if err != nil {
		return model.UserResponse{}, userError(err, username)
	}

	return model.NewUserResponse(user), nil
}

// authorize consults the access guard and records the decision.
func authorize(m *metrics.Metrics, requester *model.User, target string, action access.Action) error {
	d := access.Authorize(requester, target, action)

	result := "allow"
	if !d.Allowed {
		result = "deny"
	}
	m.AuthzDecisions.WithLabelValues(string(action), result).Inc()

	return d.Err()
}

func userError(err error, username string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("user %q: %w", username, err)
}
