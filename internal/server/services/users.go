// Package services contains the account business logic: registration, login,
// email verification and password reset. Handlers stay thin; everything that
// touches the repository, the hasher or the mailer happens here.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techasish/accountd/internal/common"
	"github.com/techasish/accountd/internal/dbx"
	"github.com/techasish/accountd/internal/logging"
	"github.com/techasish/accountd/internal/otp"
	"github.com/techasish/accountd/internal/server/auth"
	"github.com/techasish/accountd/internal/server/mail"
	"github.com/techasish/accountd/internal/server/models"
	"github.com/techasish/accountd/internal/server/password"
	"github.com/techasish/accountd/internal/server/repositories/users"
)

// OTP lifetimes as promised in the emails.
const (
	verifyOTPValidity = 10 * time.Minute
	resetOTPValidity  = 15 * time.Minute
)

// UserService implements the account operations over a users repository.
//
// Repositories are created through a factory bound to a dbx.DBTX handle so
// multi-step operations can run against a transaction while single-step ones
// go straight to the pool.
type UserService struct {
	db       *sql.DB
	repoFor  func(db dbx.DBTX) users.Repository
	hasher   password.Hasher
	mailer   mail.Notifier
	logger   logging.Logger
	secret   []byte
	tokenTTL time.Duration

	// genOTP is a seam for tests; production uses otp.Generate.
	genOTP func() (string, error)
}

func NewUserService(db *sql.DB, repoFor func(db dbx.DBTX) users.Repository,
	hasher password.Hasher, mailer mail.Notifier, logger logging.Logger,
	secret []byte, tokenTTL time.Duration) *UserService {
	return &UserService{
		db:       db,
		repoFor:  repoFor,
		hasher:   hasher,
		mailer:   mailer,
		logger:   logger.With("module", "users"),
		secret:   secret,
		tokenTTL: tokenTTL,
		genOTP:   otp.Generate,
	}
}

// Register creates an account and returns a signed session token so the new
// user is logged in immediately. The welcome email is best effort; a mail
// failure never rolls back the created account.
func (s *UserService) Register(ctx context.Context, name, email, pass string) (string, error) {
	if name == "" || email == "" || pass == "" {
		return "", common.ErrorValidation
	}

	repo := s.repoFor(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return "", common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return "", err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	created, err := repo.Create(ctx, user)
	if err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(created.ID, s.secret, s.tokenTTL)
	if err != nil {
		return "", err
	}

	if err := s.mailer.Send(ctx, created.Email, mail.SubjectWelcome,
		mail.WelcomeBody(created.Name, created.Email)); err != nil {
		s.logger.Warn(ctx, "welcome email failed", "email", created.Email, "error", err)
	}

	return token, nil
}

// Login verifies credentials and returns a signed session token. An unknown
// email and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, pass string) (string, error) {
	if email == "" || pass == "" {
		return "", common.ErrorValidation
	}

	user, err := s.repoFor(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}

	ok, err := s.hasher.Verify(pass, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	return auth.GenerateToken(user.ID, s.secret, s.tokenTTL)
}

// Profile returns the account record for an authenticated user.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.repoFor(s.db).GetByID(ctx, userID)
}

// SendVerifyOTP generates a verification code, persists it with a 10-minute
// expiry, and emails it. Returns alreadyVerified=true without sending anything
// when the account is verified. A mail failure is reported to the caller but
// the stored code stays valid.
func (s *UserService) SendVerifyOTP(ctx context.Context, userID string) (alreadyVerified bool, err error) {
	repo := s.repoFor(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.IsAccountVerified {
		return true, nil
	}

	code, err := s.genOTP()
	if err != nil {
		return false, fmt.Errorf("otp generation error: %w", err)
	}

	expireAt := time.Now().Add(verifyOTPValidity).UnixMilli()
	if err := repo.SetVerifyOTP(ctx, user.ID, code, expireAt); err != nil {
		return false, err
	}

	if err := s.mailer.Send(ctx, user.Email, mail.SubjectVerifyOTP,
		mail.VerifyOTPBody(user.Email, code)); err != nil {
		return false, fmt.Errorf("verification email error: %w", err)
	}

	s.logger.Info(ctx, "verification code sent", "user_id", user.ID)
	return false, nil
}

// VerifyEmail consumes a verification code and marks the account verified.
// Runs in a transaction so a code can only be consumed once.
func (s *UserService) VerifyEmail(ctx context.Context, userID, code string) error {
	if userID == "" || code == "" {
		return common.ErrorValidation
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repoFor(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if user.VerifyOTP == "" || user.VerifyOTP != code {
			return common.ErrInvalidOTP
		}
		if user.VerifyOTPExpireAt < time.Now().UnixMilli() {
			return common.ErrExpiredOTP
		}

		if err := repo.MarkVerified(ctx, user.ID, code); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidOTP
			}
			return err
		}

		s.logger.Info(ctx, "account verified", "user_id", user.ID)
		return nil
	})
}

// SendResetOTP generates a password-reset code for the account registered
// under email, persists it with a 15-minute expiry, and emails it.
func (s *UserService) SendResetOTP(ctx context.Context, email string) error {
	if email == "" {
		return common.ErrorValidation
	}

	repo := s.repoFor(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.genOTP()
	if err != nil {
		return fmt.Errorf("otp generation error: %w", err)
	}

	expireAt := time.Now().Add(resetOTPValidity).UnixMilli()
	if err := repo.SetResetOTP(ctx, user.ID, code, expireAt); err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, user.Email, mail.SubjectResetOTP,
		mail.ResetOTPBody(user.Email, code)); err != nil {
		return fmt.Errorf("reset email error: %w", err)
	}

	s.logger.Info(ctx, "password reset code sent", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset code and replaces the password. The session
// tokens already issued stay valid until they expire. The confirmation email
// goes out after the new password is committed and is best effort.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return common.ErrorValidation
	}

	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repoFor(tx)

		var err error
		user, err = repo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}

		if user.ResetOTP == "" || user.ResetOTP != code {
			return common.ErrInvalidOTP
		}
		if user.ResetOTPExpireAt < time.Now().UnixMilli() {
			return common.ErrExpiredOTP
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}

		if err := repo.UpdatePassword(ctx, user.ID, hash, code); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidOTP
			}
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, user.Email, mail.SubjectResetConfirmation,
		mail.ResetConfirmationBody(user.Name)); err != nil {
		s.logger.Warn(ctx, "reset confirmation email failed", "email", user.Email, "error", err)
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}
