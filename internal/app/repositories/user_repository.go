package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/dberrors"
	"github.com/ucu/innovators-hub/internal/pkg/logger"
)

var userColumns = []string{
	"u.id", "u.name", "u.email", "u.password", "u.role", "u.faculty_id", "u.department_id",
	"u.is_active", "u.access_number", "u.reset_password_token", "u.reset_password_expires",
	"u.profile_photo_url", "u.registration_number", "u.year_of_entry", "u.gender",
	"u.nationality", "u.phone_number", "u.other_names", "u.hobbies", "u.created_at", "u.updated_at",
	"f.name", "d.name",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
}

var _ IUserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func selectUsers() squirrel.SelectBuilder {
	return psql.Select(userColumns...).
		From("users u").
		LeftJoin("faculties f ON f.id = u.faculty_id").
		LeftJoin("departments d ON d.id = u.department_id")
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	var facultyName, departmentName *string
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.FacultyID, &u.DepartmentID,
		&u.IsActive, &u.AccessNumber, &u.ResetTokenHash, &u.ResetTokenExpires,
		&u.ProfilePhotoURL, &u.RegistrationNumber, &u.YearOfEntry, &u.Gender,
		&u.Nationality, &u.PhoneNumber, &u.OtherNames, &u.Hobbies, &u.CreatedAt, &u.UpdatedAt,
		&facultyName, &departmentName,
	)
	if err != nil {
		return nil, err
	}
	if u.FacultyID != nil && facultyName != nil {
		u.Faculty = &models.Faculty{ID: *u.FacultyID, Name: *facultyName}
	}
	if u.DepartmentID != nil && departmentName != nil {
		u.Department = &models.Department{ID: *u.DepartmentID, Name: *departmentName}
		if u.FacultyID != nil {
			u.Department.FacultyID = *u.FacultyID
		}
	}
	return u, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	query, args, err := selectUsers().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// Create inserts a new user and fills its id and timestamps
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.Nationality == nil {
		n := models.DefaultNationality
		u.Nationality = &n
	}
	query, args, err := psql.Insert("users").
		Columns("name", "email", "password", "role", "faculty_id", "department_id", "is_active",
			"access_number", "registration_number", "year_of_entry", "nationality").
		Values(u.Name, strings.ToLower(u.Email), u.Password, u.Role, u.FacultyID, u.DepartmentID, u.IsActive,
			u.AccessNumber, u.RegistrationNumber, u.YearOfEntry, u.Nationality).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("access number already in use")
		}
		logger.Error().Err(err).Str("email", u.Email).Msg("Error creating user")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByAccessNumber retrieves a student by access number
func (r *UserRepository) GetByAccessNumber(ctx context.Context, accessNumber string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.access_number": strings.TrimSpace(accessNumber)})
}

// GetByResetTokenHash retrieves the user holding an unexpired reset token
func (r *UserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return r.getOne(ctx, squirrel.And{
		squirrel.Eq{"u.reset_password_token": tokenHash},
		squirrel.Gt{"u.reset_password_expires": now},
	})
}

func (r *UserRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM users WHERE %s = $1)", column)
	if err := r.db.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking %s: %w", column, err)
	}
	return exists, nil
}

// EmailExists checks if an email is registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// AccessNumberExists checks if an access number is taken
func (r *UserRepository) AccessNumberExists(ctx context.Context, accessNumber string) (bool, error) {
	return r.exists(ctx, "access_number", accessNumber)
}

// List returns users matching filter, newest first
func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	q := selectUsers().OrderBy("u.created_at DESC", "u.id DESC")
	if filter.Role != nil {
		q = q.Where(squirrel.Eq{"u.role": *filter.Role})
	}
	if filter.FacultyID != nil {
		q = q.Where(squirrel.Eq{"u.faculty_id": *filter.FacultyID})
	}
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"u.department_id": *filter.DepartmentID})
	}
	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"u.is_active": true})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update writes every mutable column of u
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	query, args, err := psql.Update("users").SetMap(map[string]interface{}{
		"name":                u.Name,
		"email":               strings.ToLower(u.Email),
		"password":            u.Password,
		"role":                u.Role,
		"faculty_id":          u.FacultyID,
		"department_id":       u.DepartmentID,
		"is_active":           u.IsActive,
		"access_number":       u.AccessNumber,
		"profile_photo_url":   u.ProfilePhotoURL,
		"registration_number": u.RegistrationNumber,
		"year_of_entry":       u.YearOfEntry,
		"gender":              u.Gender,
		"nationality":         u.Nationality,
		"phone_number":        u.PhoneNumber,
		"other_names":         u.OtherNames,
		"hobbies":             u.Hobbies,
		"updated_at":          squirrel.Expr("NOW()"),
	}).Where(squirrel.Eq{"id": u.ID}).Suffix("RETURNING updated_at").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&u.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrUserNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Int64("userID", u.ID).Msg("Error updating user")
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// SetResetToken stores or clears (nil) the reset token hash and expiry
func (r *UserRepository) SetResetToken(ctx context.Context, userID int64, tokenHash *string, expires *time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET reset_password_token = $1, reset_password_expires = $2, updated_at = NOW() WHERE id = $3`,
		tokenHash, expires, userID)
	if err != nil {
		return fmt.Errorf("error setting reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdatePassword stores a new hash and clears any reset token
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password = $1, reset_password_token = NULL, reset_password_expires = NULL, updated_at = NOW() WHERE id = $2`,
		passwordHash, userID)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
