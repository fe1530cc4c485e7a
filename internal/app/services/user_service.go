package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/ucu/innovators-hub/internal/app/auth"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/auth"
	"github.com/ucu/innovators-hub/internal/pkg/filestorage"
)

// UserService handles account administration and own-profile operations
type UserService interface {
	List(ctx context.Context, callerID int64, q dto.UserListQuery) ([]*models.User, error)
	Get(ctx context.Context, callerID, userID int64) (*models.User, error)
	Create(ctx context.Context, callerID int64, req *dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, callerID, userID int64, req *dto.UpdateUserRequest) (*models.User, error)
	Deactivate(ctx context.Context, callerID, userID int64) error
	Reactivate(ctx context.Context, callerID, userID int64) error

	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error)
	UpdateProfilePhoto(ctx context.Context, userID int64, photoRef string) (*models.User, error)
}

type userServiceImpl struct {
	users   repositories.IUserRepository
	org     orgResolver
	authz   *authz.AuthorizationService
	numbers *accessNumberGenerator
	hasher  auth.PasswordHasher
	files   filestorage.Storage
	logger  zerolog.Logger
}

// NewUserService creates a new user service
func NewUserService(
	repos *repositories.Repositories,
	authorization *authz.AuthorizationService,
	numbers *accessNumberGenerator,
	hasher auth.PasswordHasher,
	files filestorage.Storage,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		users:   repos.UserRepository,
		org:     orgResolver{faculties: repos.FacultyRepository, departments: repos.DepartmentRepository},
		authz:   authorization,
		numbers: numbers,
		hasher:  hasher,
		files:   files,
		logger:  logger,
	}
}

// List returns users within the caller's scope. Only unrestricted callers
// may filter by faculty.
func (s *userServiceImpl) List(ctx context.Context, callerID int64, q dto.UserListQuery) ([]*models.User, error) {
	_, scope, err := s.authz.RequireFor(ctx, callerID, authz.ActionUserList, authz.Target{})
	if err != nil {
		return nil, err
	}

	filter := repositories.UserFilter{
		DepartmentID:    q.DepartmentID,
		IncludeInactive: q.IncludeInactive,
	}
	if q.Role != "" {
		role, err := parseRole(q.Role, "")
		if err != nil {
			return nil, err
		}
		filter.Role = &role
	}
	if scope.All {
		filter.FacultyID = q.FacultyID
	} else {
		filter.FacultyID = scope.FacultyID
	}

	return s.users.List(ctx, filter)
}

// load fetches a target account and checks action against it
func (s *userServiceImpl) load(ctx context.Context, callerID, userID int64, action authz.Action, grant models.RoleType) (authz.Subject, *models.User, error) {
	subject, err := s.authz.Subject(ctx, callerID)
	if err != nil {
		return authz.Subject{}, nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return authz.Subject{}, nil, err
	}

	target := authz.UserTarget(user)
	target.GrantRole = grant
	if _, err := s.authz.Require(subject, action, target); err != nil {
		return authz.Subject{}, nil, err
	}
	return subject, user, nil
}

// Get returns one user within the caller's scope
func (s *userServiceImpl) Get(ctx context.Context, callerID, userID int64) (*models.User, error) {
	_, user, err := s.load(ctx, callerID, userID, authz.ActionUserRead, "")
	return user, err
}

// Create adds an account with an explicit password
func (s *userServiceImpl) Create(ctx context.Context, callerID int64, req *dto.CreateUserRequest) (*models.User, error) {
	creator, err := s.authz.Subject(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if len(authz.AllowedRoles(creator.Role)) == 0 {
		return nil, apperrors.NewForbiddenError(authz.ReasonRole)
	}

	name := strings.TrimSpace(req.Name)
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || emailAddr == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	role, err := parseRole(req.Role, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	facultyID := req.FacultyID
	if authz.ForcesOwnFaculty(creator.Role) {
		facultyID = creator.FacultyID
	}
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

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
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
	s.logger.Info().Int64("userID", user.ID).Int64("creatorID", creator.ID).Str("role", string(role)).Msg("User created")
	return user, nil
}

// Update changes name, role, org membership or password of an account
func (s *userServiceImpl) Update(ctx context.Context, callerID, userID int64, req *dto.UpdateUserRequest) (*models.User, error) {
	var grant models.RoleType
	if req.Role != nil && strings.TrimSpace(*req.Role) != "" {
		role, err := parseRole(*req.Role, "")
		if err != nil {
			return nil, err
		}
		grant = role
	}

	subject, user, err := s.load(ctx, callerID, userID, authz.ActionUserUpdate, grant)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.FacultyID != nil && !authz.ForcesOwnFaculty(subject.Role) {
		user.FacultyID = req.FacultyID
	}
	if req.DepartmentID != nil {
		user.DepartmentID = req.DepartmentID
	}
	faculty, err := s.org.resolve(ctx, user.FacultyID, user.DepartmentID)
	if err != nil {
		return nil, err
	}

	if grant != "" && grant != user.Role {
		user.Role = grant
		switch {
		case grant == models.RoleStudent && user.AccessNumber == nil:
			number, err := s.numbers.next(ctx, faculty)
			if err != nil {
				return nil, err
			}
			user.AccessNumber = &number
		case grant != models.RoleStudent:
			user.AccessNumber = nil
		}
	}

	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < minPasswordLength {
			return nil, apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.Password = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}

func (s *userServiceImpl) setActive(ctx context.Context, callerID, userID int64, active bool) error {
	action := authz.ActionUserDeactivate
	if active {
		action = authz.ActionUserReactivate
	}
	_, user, err := s.load(ctx, callerID, userID, action, "")
	if err != nil {
		return err
	}

	if user.IsActive == active {
		if active {
			return apperrors.NewValidationError("user already active")
		}
		return apperrors.NewValidationError("user already deactivated")
	}

	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Int64("callerID", callerID).Bool("active", active).Msg("User activation changed")
	return nil
}

// Deactivate soft-deletes an account
func (s *userServiceImpl) Deactivate(ctx context.Context, callerID, userID int64) error {
	return s.setActive(ctx, callerID, userID, false)
}

// Reactivate restores a deactivated account
func (s *userServiceImpl) Reactivate(ctx context.Context, callerID, userID int64) error {
	return s.setActive(ctx, callerID, userID, true)
}

// GetProfile returns the caller's own account
func (s *userServiceImpl) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// clearable maps an empty string to nil
func clearable(v *string) *string {
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// UpdateProfile changes the caller's personal fields. Registration number
// and year of entry only apply to students.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty")
		}
		user.Name = name
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = clearable(req.PhoneNumber)
	}
	if req.OtherNames != nil {
		user.OtherNames = clearable(req.OtherNames)
	}
	if req.Nationality != nil {
		user.Nationality = clearable(req.Nationality)
	}
	if req.Hobbies != nil {
		user.Hobbies = clearable(req.Hobbies)
	}
	if req.Gender != nil {
		if g := clearable(req.Gender); g == nil {
			user.Gender = nil
		} else {
			gender := models.Gender(strings.ToUpper(*g))
			if !gender.IsValid() {
				return nil, apperrors.NewValidationError("gender must be one of: MALE, FEMALE, OTHER")
			}
			user.Gender = &gender
		}
	}
	if user.Role == models.RoleStudent {
		if req.RegistrationNumber != nil {
			user.RegistrationNumber = clearable(req.RegistrationNumber)
		}
		if req.YearOfEntry != nil {
			if *req.YearOfEntry == 0 {
				user.YearOfEntry = nil
			} else {
				year := *req.YearOfEntry
				user.YearOfEntry = &year
			}
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// UpdateProfilePhoto stores a new photo reference and removes the previous file
func (s *userServiceImpl) UpdateProfilePhoto(ctx context.Context, userID int64, photoRef string) (*models.User, error) {
	if strings.TrimSpace(photoRef) == "" {
		return nil, apperrors.NewValidationError("no photo uploaded")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := deref(user.ProfilePhotoURL)
	user.ProfilePhotoURL = &photoRef
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if previous != "" && previous != photoRef && s.files != nil {
		if err := s.files.Delete(previous); err != nil {
			s.logger.Warn().Err(err).Str("ref", previous).Msg("Error removing previous profile photo")
		}
	}
	return user, nil
}
