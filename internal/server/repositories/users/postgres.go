// Package users provides a PostgreSQL-backed repository for user account
// records, including the one-time-code columns used by the verification and
// password-reset flows.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/techasish/accountd/internal/common"
	"github.com/techasish/accountd/internal/dbx"
	"github.com/techasish/accountd/internal/server/models"
)

// pgUniqueViolation is the PostgreSQL error code for a unique constraint hit.
const pgUniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, is_account_verified,
		verify_otp, verify_otp_expire_at, reset_otp, reset_otp_expire_at, created_at`

// Create inserts a new user record. A duplicate email yields
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, name, email, password_hash)
         VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// GetByEmail returns the user with the given email (exact match).
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE email = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// GetByID returns the user with the given id.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE id = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// SetVerifyOTP stores a verification code and its expiry on the user row.
func (r *PostgresRepository) SetVerifyOTP(ctx context.Context, userID, code string, expireAt int64) error {
	query :=
		`UPDATE users SET verify_otp = $2, verify_otp_expire_at = $3
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, userID, code, expireAt)
}

// MarkVerified sets is_account_verified and clears the verification code in
// one statement, guarded on the code so a concurrently consumed OTP loses.
func (r *PostgresRepository) MarkVerified(ctx context.Context, userID, code string) error {
	query :=
		`UPDATE users SET is_account_verified = TRUE, verify_otp = '', verify_otp_expire_at = 0
		 WHERE id = $1 AND verify_otp = $2
		 `
	return r.execOne(ctx, query, userID, code)
}

// SetResetOTP stores a password-reset code and its expiry on the user row.
func (r *PostgresRepository) SetResetOTP(ctx context.Context, userID, code string, expireAt int64) error {
	query :=
		`UPDATE users SET reset_otp = $2, reset_otp_expire_at = $3
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, userID, code, expireAt)
}

// UpdatePassword replaces the password hash and clears the reset code in one
// statement, guarded on the code so a concurrently consumed OTP loses.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID, passwordHash, code string) error {
	query :=
		`UPDATE users SET password_hash = $2, reset_otp = '', reset_otp_expire_at = 0
		 WHERE id = $1 AND reset_otp = $3
		 `
	return r.execOne(ctx, query, userID, passwordHash, code)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.IsAccountVerified,
		&user.VerifyOTP, &user.VerifyOTPExpireAt, &user.ResetOTP, &user.ResetOTPExpireAt,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
