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

// DepartmentRepository handles department database operations
type DepartmentRepository struct {
	db *pgxpool.Pool
}

var _ IDepartmentRepository = (*DepartmentRepository)(nil)

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func selectDepartments() squirrel.SelectBuilder {
	return psql.Select("d.id", "d.name", "d.faculty_id", "f.name").
		From("departments d").
		Join("faculties f ON f.id = d.faculty_id")
}

// Create creates a department inside its faculty
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	query, args, err := psql.Insert("departments").
		Columns("name", "faculty_id").
		Values(department.Name, department.FacultyID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create department query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&department.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "departments_name_faculty_key") {
			return apperrors.ErrDepartmentAlreadyExists
		}
		logger.Error().Err(err).Msg("Error creating department")
		return fmt.Errorf("error creating department: %w", err)
	}
	return nil
}

func (r *DepartmentRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Department, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build department query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying departments: %w", err)
	}
	defer rows.Close()

	departments := []*models.Department{}
	for rows.Next() {
		d := &models.Department{Faculty: &models.Faculty{}}
		if err := rows.Scan(&d.ID, &d.Name, &d.FacultyID, &d.Faculty.Name); err != nil {
			return nil, fmt.Errorf("error scanning department row: %w", err)
		}
		d.Faculty.ID = d.FacultyID
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *DepartmentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Department, error) {
	list, err := r.query(ctx, selectDepartments().Where(where).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return list[0], nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	return r.getOne(ctx, squirrel.Eq{"d.id": id})
}

// GetByName retrieves a department of a faculty by name
func (r *DepartmentRepository) GetByName(ctx context.Context, facultyID int64, name string) (*models.Department, error) {
	return r.getOne(ctx, squirrel.Eq{"d.faculty_id": facultyID, "d.name": name})
}

// List returns departments ordered by name, optionally of one faculty
func (r *DepartmentRepository) List(ctx context.Context, facultyID *int64) ([]*models.Department, error) {
	q := selectDepartments().OrderBy("d.name ASC")
	if facultyID != nil {
		q = q.Where(squirrel.Eq{"d.faculty_id": *facultyID})
	}
	return r.query(ctx, q)
}
