package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "myflix"
	tokenAudience = "myflix-api"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token has expired")
)

// Claims represents the JWT claims of a session token. The subject is the username.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is a signed session token together with its decoded metadata.
type Token struct {
	Value     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager issues and validates HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager signing with secret. Tokens expire ttl after issuance.
func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of m that reads the current time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

// TTL returns the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a signed token for username. Every call yields a distinct
// token because each carries a fresh token id.
func (m *TokenManager) Issue(username string) (Token, error) {
	now := m.now().Truncate(time.Second)
	exp := now.Add(m.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, err
	}

	return Token{Value: signed, Subject: username, IssuedAt: now, ExpiresAt: exp}, nil
}

// Parse checks structure, then signature, then expiry, and returns the claims
// of a valid token. Errors are one of ErrMalformedToken, ErrBadSignature or
// ErrTokenExpired.
func (m *TokenManager) Parse(value string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(value, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		// The library rejects now == exp; a token stays valid through its expiry instant.
		jwt.WithLeeway(time.Nanosecond),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrMalformedToken
	}

	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrMalformedToken
	}
}
