package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/auth"
	"github.com/ucu/innovators-hub/internal/pkg/email"
	"github.com/ucu/innovators-hub/internal/pkg/helpers"
)

const (
	minPasswordLength = 6
	resetTokenBytes   = 32
	resetTokenTTL     = time.Hour
)

var errInvalidCredentials = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid credentials")

// AuthService handles sign-in and password management
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// RequestPasswordReset succeeds silently when no account matches
	RequestPasswordReset(ctx context.Context, accessNumber string) error
	ResetPassword(ctx context.Context, token, password string) error
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
}

type authServiceImpl struct {
	users       repositories.IUserRepository
	hasher      auth.PasswordHasher
	tokens      auth.TokenIssuer
	mailer      email.Mailer
	frontendURL string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.IUserRepository,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	mailer email.Mailer,
	frontendURL string,
	now func() time.Time,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: frontendURL,
		now:         now,
		logger:      logger,
	}
}

// findByIdentifier looks the identifier up as an email first, then as an access number
func (s *authServiceImpl) findByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	return s.users.GetByAccessNumber(ctx, identifier)
}

// Login authenticates by email or access number
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("login credentials are required")
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Debug().Str("identifier", identifier).Msg("Login for unknown identifier")
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(user.Password, req.Password) {
		return nil, errInvalidCredentials
	}
	// only a caller holding the password learns the account is deactivated
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, expiresIn, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}

	return &dto.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
		User:      dto.NewUserSummary(user),
	}, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset stores a hashed one-hour token and mails the reset
// link. A mail failure clears the token again.
func (s *authServiceImpl) RequestPasswordReset(ctx context.Context, accessNumber string) error {
	accessNumber = strings.TrimSpace(accessNumber)
	if accessNumber == "" {
		return apperrors.NewValidationError("access number is required")
	}

	user, err := s.users.GetByAccessNumber(ctx, accessNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Debug().Str("accessNumber", accessNumber).Msg("Password reset for unknown access number")
			return nil
		}
		return err
	}

	token, err := helpers.RandomHex(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}
	tokenHash := hashResetToken(token)
	expires := s.now().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, &tokenHash, &expires); err != nil {
		return err
	}

	msg, err := email.PasswordResetEmail(email.ResetData{
		Name:     user.Name,
		ResetURL: email.JoinURL(s.frontendURL, "/reset-password/"+token),
	})
	if err == nil {
		err = s.mailer.Send(ctx, user.Email, msg.Subject, msg.HTML)
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Password reset email failed, clearing token")
		if clearErr := s.users.SetResetToken(ctx, user.ID, nil, nil); clearErr != nil {
			s.logger.Error().Err(clearErr).Int64("userID", user.ID).Msg("Error clearing reset token")
		}
		return apperrors.NewCustomError(err, "failed to send reset email, please try again later")
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Password reset email sent")
	return nil
}

// ResetPassword sets a new password for the holder of an unexpired token
func (s *authServiceImpl) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.ErrInvalidPasswordResetToken
	}

	user, err := s.users.GetByResetTokenHash(ctx, hashResetToken(token), s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.ErrInvalidPasswordResetToken
		}
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// ChangePassword replaces the password of userID after checking the current one
func (s *authServiceImpl) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required")
	}
	if len(req.NewPassword) < minPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("new password must be at least %d characters", minPasswordLength))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(user.Password, req.CurrentPassword) {
		return apperrors.NewValidationError("current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}
