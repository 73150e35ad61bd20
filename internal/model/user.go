package model

import "time"

// DateLayout is the wire format of a user's birthday.
const DateLayout = "2006-01-02"

// User represents a registered user and their favorite movies.
type User struct {
	ID             string
	Username       string
	PasswordHash   string
	Email          string
	Birthday       time.Time
	FavoriteMovies []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a copy that shares no mutable state with u.
func (u *User) Clone() *User {
	c := *u
	c.FavoriteMovies = append([]string(nil), u.FavoriteMovies...)
	return &c
}

// UserPatch holds the replacement values applied by a profile update.
type UserPatch struct {
	Username     string
	Email        string
	Birthday     time.Time
	PasswordHash string
}

// Apply copies the patch onto u.
func (p UserPatch) Apply(u *User) {
	u.Username = p.Username
	u.Email = p.Email
	u.Birthday = p.Birthday
	u.PasswordHash = p.PasswordHash
}

// UserRequest is the body of registration and profile update requests.
type UserRequest struct {
	Username string `json:"username" validate:"required,min=5,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Birthday string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents an authentication response with a JWT token and user info.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no password hash).
type UserResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Birthday       string    `json:"birthday,omitempty"`
	FavoriteMovies []string  `json:"favorite_movies"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUserResponse strips the sensitive fields of u.
func NewUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FavoriteMovies: u.FavoriteMovies,
		CreatedAt:      u.CreatedAt,
	}
	if resp.FavoriteMovies == nil {
		resp.FavoriteMovies = []string{}
	}
	if !u.Birthday.IsZero() {
		resp.Birthday = u.Birthday.Format(DateLayout)
	}
	return resp
}
