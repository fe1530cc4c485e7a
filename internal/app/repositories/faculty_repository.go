package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/dberrors"
	"github.com/ucu/innovators-hub/internal/pkg/logger"
)

// FacultyRepository handles faculty database operations
type FacultyRepository struct {
	db *pgxpool.Pool
}

var _ IFacultyRepository = (*FacultyRepository)(nil)

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(db *pgxpool.Pool) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// Create creates a new faculty
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	query, args, err := psql.Insert("faculties").
		Columns("name").
		Values(faculty.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create faculty query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&faculty.ID); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrFacultyAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create faculty query")
		return fmt.Errorf("error creating faculty: %w", err)
	}
	return nil
}

func (r *FacultyRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Faculty, error) {
	query, args, err := psql.Select("id", "name").From("faculties").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get faculty query: %w", err)
	}

	faculty := &models.Faculty{}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&faculty.ID, &faculty.Name); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrFacultyNotFound
		}
		return nil, fmt.Errorf("error getting faculty: %w", err)
	}
	return faculty, nil
}

// GetByID retrieves a faculty with its departments
func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*models.Faculty, error) {
	faculty, err := r.getOne(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}

	departments, err := NewDepartmentRepository(r.db).List(ctx, &faculty.ID)
	if err != nil {
		return nil, err
	}
	faculty.Departments = departments
	return faculty, nil
}

// GetByName retrieves a faculty by its exact name
func (r *FacultyRepository) GetByName(ctx context.Context, name string) (*models.Faculty, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

// List retrieves all faculties with their departments
func (r *FacultyRepository) List(ctx context.Context) ([]*models.Faculty, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.name, d.id, d.name
		FROM faculties f
		LEFT JOIN departments d ON d.faculty_id = f.id
		ORDER BY f.name ASC, d.name ASC`)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list faculties query")
		return nil, fmt.Errorf("error querying faculties: %w", err)
	}
	defer rows.Close()

	faculties := []*models.Faculty{}
	var current *models.Faculty
	for rows.Next() {
		var (
			facultyID      int64
			facultyName    string
			departmentID   *int64
			departmentName *string
		)
		if err := rows.Scan(&facultyID, &facultyName, &departmentID, &departmentName); err != nil {
			return nil, fmt.Errorf("error scanning faculty row: %w", err)
		}
		if current == nil || current.ID != facultyID {
			current = &models.Faculty{ID: facultyID, Name: facultyName, Departments: []*models.Department{}}
			faculties = append(faculties, current)
		}
		if departmentID != nil && departmentName != nil {
			current.Departments = append(current.Departments, &models.Department{
				ID:        *departmentID,
				Name:      *departmentName,
				FacultyID: facultyID,
			})
		}
	}
	return faculties, rows.Err()
}
