package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/ucu/innovators-hub/internal/app/auth"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/auth"
	"github.com/ucu/innovators-hub/internal/pkg/email"
	"github.com/ucu/innovators-hub/internal/pkg/helpers"
)

const (
	tempPasswordPrefix = "Changemenow@"
	accessNumberTries  = 10
)

var facultyPrefixes = []struct {
	pattern *regexp.Regexp
	prefix  string
}{
	{regexp.MustCompile(`(?i)Agricultural Sciences`), "A"},
	{regexp.MustCompile(`(?i)Engineering.*Design.*Technology`), "B"},
	{regexp.MustCompile(`(?i)(Public Health|Nursing|Midwifery)`), "C"},
}

// accessNumberPrefix returns the single-letter prefix of a faculty
func accessNumberPrefix(facultyName string) string {
	for _, fp := range facultyPrefixes {
		if fp.pattern.MatchString(facultyName) {
			return fp.prefix
		}
	}
	return "U"
}

// accessNumberGenerator draws faculty-prefixed student access numbers
type accessNumberGenerator struct {
	users  repositories.IUserRepository
	random helpers.RandomSource
	logger zerolog.Logger
}

func newAccessNumberGenerator(users repositories.IUserRepository, random helpers.RandomSource, logger zerolog.Logger) *accessNumberGenerator {
	return &accessNumberGenerator{users: users, random: random, logger: logger}
}

// next returns a free access number, or after accessNumberTries collisions
// the last candidate drawn. The unique index rejects that one on insert.
func (g *accessNumberGenerator) next(ctx context.Context, faculty *models.Faculty) (string, error) {
	prefix := "U"
	if faculty != nil {
		prefix = accessNumberPrefix(faculty.Name)
	}

	var candidate string
	for i := 0; i < accessNumberTries; i++ {
		candidate = fmt.Sprintf("%s%d", prefix, helpers.IntBetween(g.random, 100000, 999999))
		exists, err := g.users.AccessNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	g.logger.Warn().Str("accessNumber", candidate).Msg("Access number retries exhausted, using last candidate")
	return candidate, nil
}

// ProvisioningService creates accounts on behalf of administrators
type ProvisioningService interface {
	Provision(ctx context.Context, creatorID int64, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
}

type provisioningServiceImpl struct {
	users       repositories.IUserRepository
	org         orgResolver
	authz       *authz.AuthorizationService
	numbers     *accessNumberGenerator
	hasher      auth.PasswordHasher
	mailer      email.Mailer
	random      helpers.RandomSource
	frontendURL string
	logger      zerolog.Logger
}

// NewProvisioningService creates a new provisioning service
func NewProvisioningService(
	repos *repositories.Repositories,
	authorization *authz.AuthorizationService,
	numbers *accessNumberGenerator,
	hasher auth.PasswordHasher,
	mailer email.Mailer,
	random helpers.RandomSource,
	frontendURL string,
	logger zerolog.Logger,
) ProvisioningService {
	return &provisioningServiceImpl{
		users:       repos.UserRepository,
		org:         orgResolver{faculties: repos.FacultyRepository, departments: repos.DepartmentRepository},
		authz:       authorization,
		numbers:     numbers,
		hasher:      hasher,
		mailer:      mailer,
		random:      random,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (s *provisioningServiceImpl) tempPassword() string {
	return fmt.Sprintf("%s%d", tempPasswordPrefix, helpers.IntBetween(s.random, 1000, 9999))
}

// Provision creates an account with a temporary password and mails the
// credentials. A mail failure keeps the account and returns the password.
func (s *provisioningServiceImpl) Provision(ctx context.Context, creatorID int64, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	creator, err := s.authz.Subject(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if len(authz.AllowedRoles(creator.Role)) == 0 {
		return nil, apperrors.NewForbiddenError("only admins or faculty admins can create users")
	}

	name := strings.TrimSpace(req.Name)
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || emailAddr == "" {
		return nil, apperrors.NewValidationError("name and email are required")
	}

	facultyID := req.FacultyID
	if authz.ForcesOwnFaculty(creator.Role) {
		facultyID = creator.FacultyID
	}
	if facultyID == nil {
		return nil, apperrors.NewValidationError("faculty is required")
	}

	role := authz.CoerceRole(creator.Role, models.RoleType(strings.ToLower(strings.TrimSpace(req.Role))))
	if _, err := s.authz.Require(creator, authz.ActionUserCreate, authz.Target{GrantRole: role, FacultyID: facultyID}); err != nil {
		return nil, err
	}

	faculty, err := s.org.resolve(ctx, facultyID, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	password := s.tempPassword()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing temporary password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        emailAddr,
		Password:     hash,
		Role:         role,
		FacultyID:    facultyID,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
	}
	if role == models.RoleStudent {
		number, err := s.numbers.next(ctx, faculty)
		if err != nil {
			return nil, err
		}
		user.AccessNumber = &number
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Int64("creatorID", creator.ID).
		Str("role", string(role)).
		Msg("User provisioned")

	resp := &dto.RegisterResponse{User: dto.NewUserSummary(user)}
	if err := s.sendCredentials(ctx, user, password, req.AlternativeEmail); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Credentials email failed, returning temporary password")
		resp.TempPassword = password
		return resp, nil
	}
	resp.EmailSent = true
	return resp, nil
}

func (s *provisioningServiceImpl) sendCredentials(ctx context.Context, user *models.User, password, alternativeEmail string) error {
	msg, err := email.CredentialsEmail(email.CredentialsData{
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		Password:     password,
		AccessNumber: deref(user.AccessNumber),
		LoginURL:     email.JoinURL(s.frontendURL, "/login"),
	})
	if err != nil {
		return err
	}

	to := strings.TrimSpace(alternativeEmail)
	if to == "" {
		to = user.Email
	}
	return s.mailer.Send(ctx, to, msg.Subject, msg.HTML)
}
