package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/myflix/myflix-api/internal/access"
	"github.com/myflix/myflix-api/internal/crypto"
	"github.com/myflix/myflix-api/internal/metrics"
	"github.com/myflix/myflix-api/internal/model"
	"github.com/myflix/myflix-api/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnknownSubject     = errors.New("token subject no longer exists")
)

// AuthService handles registration, login and bearer token authentication.
type AuthService struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   *crypto.TokenManager
	validate *validator.Validate
	metrics  *metrics.Metrics
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens *crypto.TokenManager, m *metrics.Metrics) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: newValidator(),
		metrics:  m,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req model.UserRequest) (model.UserResponse, error) {
	if err := authorize(s.metrics, nil, req.Username, access.Register); err != nil {
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

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		Birthday:     birthday,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return model.UserResponse{}, ErrUsernameTaken
		}
		return model.UserResponse{}, fmt.Errorf("creating user %q: %w", req.Username, err)
	}

	return model.NewUserResponse(user), nil
}

// Login verifies a username and password and issues a session token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, fmt.Errorf("loading user %q: %w", req.Username, err)
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("verifying password of %q: %w", req.Username, err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      model.NewUserResponse(user),
	}, nil
}

// Authenticate validates a bearer token and returns the current record of its
// subject. Token failures wrap ErrInvalidToken; any other error comes from
// the store.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.metrics.TokenFailures.WithLabelValues(tokenFailureReason(err)).Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.TokenFailures.WithLabelValues("unknown_subject").Inc()
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrUnknownSubject)
		}
		return nil, fmt.Errorf("loading token subject %q: %w", claims.Subject, err)
	}

	return user, nil
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, crypto.ErrTokenExpired):
		return "expired"
	case errors.Is(err, crypto.ErrBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
