package auth

import (
	"context"
	"errors"

	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/logger"
)

// AuthorizationService resolves subjects from the identity store and applies the policy
type AuthorizationService struct {
	userRepo repositories.IUserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// Subject loads the current org membership of an authenticated user
func (s *AuthorizationService) Subject(ctx context.Context, userID int64) (Subject, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return Subject{}, apperrors.NewUnauthenticatedError("user no longer exists")
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error loading subject")
		return Subject{}, err
	}
	if !user.IsActive {
		return Subject{}, apperrors.ErrAccountDisabled
	}
	return SubjectOf(user), nil
}

// Require returns the denial error when subject may not perform action on target
func (s *AuthorizationService) Require(subject Subject, action Action, target Target) (Scope, error) {
	decision := Authorize(subject, action, target)
	if !decision.Allowed {
		logger.Debug().
			Int64("userID", subject.ID).
			Str("role", string(subject.Role)).
			Str("action", string(action)).
			Str("reason", decision.Reason).
			Msg("Authorization denied")
		return Scope{}, decision.Err()
	}
	return decision.Scope, nil
}

// RequireFor loads the subject and applies the policy in one step
func (s *AuthorizationService) RequireFor(ctx context.Context, userID int64, action Action, target Target) (Subject, Scope, error) {
	subject, err := s.Subject(ctx, userID)
	if err != nil {
		return Subject{}, Scope{}, err
	}
	scope, err := s.Require(subject, action, target)
	if err != nil {
		return Subject{}, Scope{}, err
	}
	return subject, scope, nil
}
