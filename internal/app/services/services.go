// Package services holds the business logic behind the HTTP handlers:
// authentication, account provisioning and administration, the project
// moderation registry, the org directory and the dashboard analytics.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/ucu/innovators-hub/internal/app/auth"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/auth"
	"github.com/ucu/innovators-hub/internal/pkg/email"
	"github.com/ucu/innovators-hub/internal/pkg/filestorage"
	"github.com/ucu/innovators-hub/internal/pkg/helpers"
	"github.com/ucu/innovators-hub/internal/pkg/logger"
)

// Dependencies are the collaborators shared by the services
type Dependencies struct {
	Repos       *repositories.Repositories
	Hasher      auth.PasswordHasher
	Tokens      auth.TokenIssuer
	Mailer      email.Mailer
	Files       filestorage.Storage
	Random      helpers.RandomSource
	Now         func() time.Time
	FrontendURL string
	Logger      zerolog.Logger
}

// Services holds every service instance
type Services struct {
	Authorization *authz.AuthorizationService
	Auth          AuthService
	Provisioning  ProvisioningService
	User          UserService
	Project       ProjectService
	Analytics     AnalyticsService
	Faculty       FacultyService
}

// NewServices wires the services over deps
func NewServices(deps Dependencies) *Services {
	if deps.Random == nil {
		deps.Random = helpers.CryptoRandom{}
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}

	repos := deps.Repos
	lgr := func(component string) zerolog.Logger { return logger.Component(deps.Logger, component) }
	authorization := authz.NewAuthorizationService(repos.UserRepository)
	numbers := newAccessNumberGenerator(repos.UserRepository, deps.Random, lgr("access-numbers"))

	return &Services{
		Authorization: authorization,
		Auth:          NewAuthService(repos.UserRepository, deps.Hasher, deps.Tokens, deps.Mailer, deps.FrontendURL, deps.Now, lgr("auth")),
		Provisioning:  NewProvisioningService(repos, authorization, numbers, deps.Hasher, deps.Mailer, deps.Random, deps.FrontendURL, lgr("provisioning")),
		User:          NewUserService(repos, authorization, numbers, deps.Hasher, deps.Files, lgr("users")),
		Project:       NewProjectService(repos, authorization, deps.Files, lgr("projects")),
		Analytics:     NewAnalyticsService(repos.AnalyticsRepository, authorization, lgr("analytics")),
		Faculty:       NewFacultyService(repos.FacultyRepository, repos.DepartmentRepository),
	}
}

// orgResolver validates faculty and department references
type orgResolver struct {
	faculties   repositories.IFacultyRepository
	departments repositories.IDepartmentRepository
}

// resolve loads the faculty and checks the department belongs to it. A nil
// facultyID yields a nil faculty.
func (r orgResolver) resolve(ctx context.Context, facultyID, departmentID *int64) (*models.Faculty, error) {
	var faculty *models.Faculty
	if facultyID != nil {
		f, err := r.faculties.GetByID(ctx, *facultyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return nil, apperrors.NewValidationError("faculty does not exist")
			}
			return nil, err
		}
		faculty = f
	}

	if departmentID != nil {
		d, err := r.departments.GetByID(ctx, *departmentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return nil, apperrors.NewValidationError("department does not exist")
			}
			return nil, err
		}
		if faculty == nil || d.FacultyID != faculty.ID {
			return nil, apperrors.NewValidationError("department does not belong to the faculty")
		}
	}
	return faculty, nil
}

// parseRole maps request text to a role; empty means fallback
func parseRole(s string, fallback models.RoleType) (models.RoleType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	role := models.RoleType(strings.ToLower(s))
	if !role.IsValid() {
		return "", apperrors.NewValidationError("role must be one of: student, supervisor, admin, faculty_admin")
	}
	return role, nil
}

// optional returns nil for blank text
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
