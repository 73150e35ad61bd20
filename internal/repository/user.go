package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/myflix/myflix-api/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

const userColumns = `id, username, password_hash, email, birthday, favorite_movies, created_at, updated_at`

// UserRepository stores users in MySQL. The unique index on users.username
// makes Create atomic with respect to the duplicate check.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user, filling in its ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	prepareNewUser(user)

	favorites, err := encodeFavorites(user.FavoriteMovies)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.Email, nullDate(user.Birthday),
		favorites, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateUsername
		}
		return err
	}

	return nil
}

// GetByUsername retrieves a user by their username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

// Update replaces the profile fields of username with patch. A rename to a
// username that is already taken fails with ErrDuplicateUsername. The update
// and the read of the result share one transaction. Affected rows count
// matched rows (see NewDB), so an unchanged profile is still found.
func (r *UserRepository) Update(ctx context.Context, username string, patch model.UserPatch) (*model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `UPDATE users SET username = ?, password_hash = ?, email = ?, birthday = ?, updated_at = ? WHERE username = ?`
	result, err := tx.ExecContext(ctx, query,
		patch.Username, patch.PasswordHash, patch.Email, nullDate(patch.Birthday), time.Now().UTC(), username,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}

	user, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, patch.Username))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// AppendFavorite adds movieID at the end of the user's favorites.
func (r *UserRepository) AppendFavorite(ctx context.Context, username, movieID string) (*model.User, error) {
	query := `UPDATE users SET favorite_movies = JSON_ARRAY_APPEND(favorite_movies, '$', ?), updated_at = ? WHERE username = ?`

	result, err := r.db.ExecContext(ctx, query, movieID, time.Now().UTC(), username)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}

	return r.GetByUsername(ctx, username)
}

// RemoveFavorite removes every occurrence of movieID from the user's favorites.
func (r *UserRepository) RemoveFavorite(ctx context.Context, username, movieID string) (*model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? FOR UPDATE`
	user, err := scanUser(tx.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, err
	}

	user.FavoriteMovies = removeAll(user.FavoriteMovies, movieID)
	user.UpdatedAt = time.Now().UTC()

	favorites, err := encodeFavorites(user.FavoriteMovies)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE users SET favorite_movies = ?, updated_at = ? WHERE id = ?`,
		favorites, user.UpdatedAt, user.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		user      model.User
		birthday  sql.NullTime
		favorites []byte
	)
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email, &birthday,
		&favorites, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if birthday.Valid {
		user.Birthday = birthday.Time
	}
	if len(favorites) > 0 {
		if err := json.Unmarshal(favorites, &user.FavoriteMovies); err != nil {
			return nil, fmt.Errorf("decoding favorite_movies of %q: %w", user.Username, err)
		}
	}

	return &user, nil
}

// prepareNewUser assigns the server-generated fields of a user about to be created.
func prepareNewUser(user *model.User) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []string{}
	}
}

func encodeFavorites(favorites []string) ([]byte, error) {
	if favorites == nil {
		favorites = []string{}
	}
	return json.Marshal(favorites)
}

func removeAll(favorites []string, movieID string) []string {
	return slices.DeleteFunc(favorites, func(id string) bool { return id == movieID })
}

func nullDate(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
