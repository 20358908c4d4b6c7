package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

// PostgresRegistry backs the registry with a users table. Uniqueness is
// enforced by the unique constraint on username, surfaced as ErrUsernameTaken.
type PostgresRegistry struct {
	db    *sql.DB
	valid UsernameRule
}

func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db, valid: DefaultUsernameRule}
}

func (s *PostgresRegistry) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresRegistry) Create(ctx context.Context, username, password string) (User, error) {
	if !s.valid(username) {
		return User{}, ErrInvalidUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{ID: "u_" + uuid.NewString(), Name: username}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO users (id, username, pass_hash)
			VALUES ($1, $2, $3)
		`, u.ID, u.Name, hash)

		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	})
	if err != nil {
		return User{}, err
	}

	return u, nil
}

func (s *PostgresRegistry) Verify(ctx context.Context, username, password string) (User, error) {
	var (
		u    User
		hash []byte
	)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, username, pass_hash
			FROM users
			WHERE username = $1
		`, username).Scan(&u.ID, &u.Name, &hash)
	})
	if err == sql.ErrNoRows {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (s *PostgresRegistry) Exists(ctx context.Context, username string) (bool, error) {
	var one int

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT 1 FROM users WHERE username = $1
		`, username).Scan(&one)
	})
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
