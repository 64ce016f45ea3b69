// Package repository provides PostgreSQL persistence for user accounts.
package repository

import (
	"context"
	"errors"
	"time"

	"courseportal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TokenTypeEmailVerify = "EMAIL_VERIFY"

	uniqueViolationCode = "23505"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID            uuid.UUID
	Email         string
	Username      string
	PasswordHash  string
	Role          string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Profile struct {
	UserID    uuid.UUID
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarKey *string
	UpdatedAt time.Time
}

const userColumns = `id, email, username, password_hash, role, is_email_verified, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// CreateUser inserts the user and an empty profile in one transaction.
// A unique violation on email or username reports as a conflict without
// disclosing which of the two collided.
func (r *Repository) CreateUser(ctx context.Context, email, username, passwordHash, role string) (User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return User{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var user User
	user, err = scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, role, is_email_verified)
		VALUES ($1, $2, $3, $4, false)
		RETURNING `+userColumns,
		email, username, passwordHash, role))
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, apperr.Conflict("Email or username already exist")
		}
		return User{}, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, user.ID); err != nil {
		return User{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return User{}, err
	}

	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("User not found")
	}
	return user, err
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("User not found")
	}
	return user, err
}

func (r *Repository) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, first_name, last_name, bio, avatar_key, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Bio, &p.AvatarKey, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, apperr.NotFound("Profile not found")
	}
	return p, err
}

// UpdateProfile overwrites the mutable profile fields. Nil pointers clear
// the corresponding column, matching a full-document PUT.
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName, bio *string) (Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		UPDATE profiles
		SET first_name = $2, last_name = $3, bio = $4, updated_at = now()
		WHERE user_id = $1
		RETURNING user_id, first_name, last_name, bio, avatar_key, updated_at
	`, userID, firstName, lastName, bio).Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Bio, &p.AvatarKey, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, apperr.NotFound("Profile not found")
	}
	return p, err
}

func (r *Repository) SetAvatarKey(ctx context.Context, userID uuid.UUID, avatarKey string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles SET avatar_key = $2, updated_at = now() WHERE user_id = $1
	`, userID, avatarKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile not found")
	}
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *Repository) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET is_email_verified = true, updated_at = now() WHERE id = $1
	`, userID)
	return err
}

// CreateUserToken stores the hash of a one-time token, replacing any previous
// token of the same type for the user.
func (r *Repository) CreateUserToken(ctx context.Context, userID uuid.UUID, tokenHash, tokenType string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_tokens (user_id, token_hash, token_type, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, token_type)
		DO UPDATE SET token_hash = EXCLUDED.token_hash, expires_at = EXCLUDED.expires_at
	`, userID, tokenHash, tokenType, expiresAt)
	return err
}

// ConsumeUserToken deletes the matching token and returns its owner and
// expiry. The delete makes the token single-use.
func (r *Repository) ConsumeUserToken(ctx context.Context, tokenHash, tokenType string) (uuid.UUID, time.Time, error) {
	var userID uuid.UUID
	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, `
		DELETE FROM user_tokens
		WHERE token_hash = $1 AND token_type = $2
		RETURNING user_id, expires_at
	`, tokenHash, tokenType).Scan(&userID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, time.Time{}, apperr.Unauthenticated("Invalid or expired token")
	}
	return userID, expiresAt, err
}

// ListUsers returns a page of users ordered by creation date plus the total count.
func (r *Repository) ListUsers(ctx context.Context, skip, take int) ([]User, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, skip, take)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]User, 0, take)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (r *Repository) SetUserRole(ctx context.Context, userID uuid.UUID, role string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET role = $2, updated_at = now() WHERE id = $1
		RETURNING `+userColumns,
		userID, role))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("User not found")
	}
	return user, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
