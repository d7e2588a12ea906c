package users

import (
	"context"

	"github.com/techasish/accountd/internal/server/models"
)

// Repository is the persistence contract for user account records.
//
// The conditional mutations (MarkVerified, UpdatePassword) guard on the
// stored OTP value so a concurrently consumed code cannot be applied twice;
// both return common.ErrorNotFound when no row matched.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// SetVerifyOTP stores a verification code with its expiry (epoch ms).
	SetVerifyOTP(ctx context.Context, userID, code string, expireAt int64) error

	// MarkVerified flips is_account_verified and clears the verification
	// code, but only if the stored code still equals the one supplied.
	MarkVerified(ctx context.Context, userID, code string) error

	// SetResetOTP stores a password-reset code with its expiry (epoch ms).
	SetResetOTP(ctx context.Context, userID, code string, expireAt int64) error

	// UpdatePassword replaces the password hash and clears the reset code,
	// but only if the stored code still equals the one supplied.
	UpdatePassword(ctx context.Context, userID, passwordHash, code string) error
}
