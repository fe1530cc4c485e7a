package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
)

// UserRepository is the in-memory user store
type UserRepository struct {
	db *DB
}

var _ repositories.IUserRepository = (*UserRepository)(nil)

// NewUserRepository creates a UserRepository over db
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// checkUnique must be called with mu held; selfID is skipped
func (r *UserRepository) checkUnique(u *models.User, selfID int64) error {
	for _, other := range r.db.users {
		if other.ID == selfID {
			continue
		}
		if other.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if u.AccessNumber != nil && other.AccessNumber != nil && *other.AccessNumber == *u.AccessNumber {
			return apperrors.NewConflictError("access number already in use")
		}
	}
	return nil
}

// Create inserts a user
func (r *UserRepository) Create(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	if err := r.checkUnique(u, 0); err != nil {
		return err
	}
	if u.Nationality == nil {
		n := models.DefaultNationality
		u.Nationality = &n
	}

	u.ID = r.db.id()
	u.CreatedAt = r.db.Now()
	u.UpdatedAt = u.CreatedAt
	r.db.users[u.ID] = copyUser(u)
	return nil
}

func (r *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if match(u) {
			return r.db.withOrg(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return r.db.withOrg(u), nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u *models.User) bool { return u.Email == email })
}

// GetByAccessNumber retrieves a student by access number
func (r *UserRepository) GetByAccessNumber(_ context.Context, accessNumber string) (*models.User, error) {
	accessNumber = strings.TrimSpace(accessNumber)
	return r.find(func(u *models.User) bool {
		return u.AccessNumber != nil && *u.AccessNumber == accessNumber
	})
}

// GetByResetTokenHash retrieves the user holding an unexpired reset token
func (r *UserRepository) GetByResetTokenHash(_ context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now)
	})
}

// EmailExists checks if an email is registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

// AccessNumberExists checks if an access number is taken
func (r *UserRepository) AccessNumberExists(ctx context.Context, accessNumber string) (bool, error) {
	_, err := r.GetByAccessNumber(ctx, accessNumber)
	return err == nil, nil
}

// List returns users matching filter, newest first
func (r *UserRepository) List(_ context.Context, filter repositories.UserFilter) ([]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := []*models.User{}
	for _, u := range r.db.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.FacultyID != nil && !u.InFaculty(filter.FacultyID) {
			continue
		}
		if filter.DepartmentID != nil && !u.InDepartment(filter.DepartmentID) {
			continue
		}
		if !filter.IncludeInactive && !u.IsActive {
			continue
		}
		users = append(users, r.db.withOrg(u))
	}

	sort.Slice(users, func(i, j int) bool {
		return newerFirst(users[i].CreatedAt, users[i].ID, users[j].CreatedAt, users[j].ID)
	})
	return users, nil
}

// Update replaces the stored user
func (r *UserRepository) Update(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.users[u.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Email = strings.ToLower(u.Email)
	if err := r.checkUnique(u, u.ID); err != nil {
		return err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = r.db.Now()
	stored := copyUser(u)
	stored.ResetTokenHash = existing.ResetTokenHash
	stored.ResetTokenExpires = existing.ResetTokenExpires
	r.db.users[u.ID] = stored
	return nil
}

// SetResetToken stores or clears the reset token
func (r *UserRepository) SetResetToken(_ context.Context, userID int64, tokenHash *string, expires *time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpires = expires
	u.UpdatedAt = r.db.Now()
	return nil
}

// UpdatePassword stores a new hash and clears any reset token
func (r *UserRepository) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpires = nil
	u.UpdatedAt = r.db.Now()
	return nil
}
