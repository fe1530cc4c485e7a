package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/db"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/dberrors"
	"github.com/ucu/innovators-hub/internal/pkg/logger"
)

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db *db.PostgresDB
}

var _ IProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(database *db.PostgresDB) *ProjectRepository {
	return &ProjectRepository{db: database}
}

func selectProjects() squirrel.SelectBuilder {
	return psql.Select(
		"p.id", "p.title", "p.description", "p.category", "p.technologies", "p.github_link",
		"p.document_url", "p.status", "p.student_id", "p.supervisor_id", "p.created_at", "p.updated_at",
		"s.name", "s.email", "s.role", "s.faculty_id", "s.department_id", "s.access_number",
		"f.name", "d.name",
	).
		From("projects p").
		Join("users s ON s.id = p.student_id").
		LeftJoin("faculties f ON f.id = s.faculty_id").
		LeftJoin("departments d ON d.id = s.department_id")
}

func scanProject(row pgx.Row) (*models.Project, error) {
	p := &models.Project{Student: &models.User{}}
	var facultyName, departmentName *string
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Category, &p.Technologies, &p.GithubLink,
		&p.DocumentURL, &p.Status, &p.StudentID, &p.SupervisorID, &p.CreatedAt, &p.UpdatedAt,
		&p.Student.Name, &p.Student.Email, &p.Student.Role, &p.Student.FacultyID, &p.Student.DepartmentID, &p.Student.AccessNumber,
		&facultyName, &departmentName,
	)
	if err != nil {
		return nil, err
	}
	p.Student.ID = p.StudentID
	if p.Student.FacultyID != nil && facultyName != nil {
		p.Student.Faculty = &models.Faculty{ID: *p.Student.FacultyID, Name: *facultyName}
	}
	if p.Student.DepartmentID != nil && departmentName != nil {
		p.Student.Department = &models.Department{ID: *p.Student.DepartmentID, Name: *departmentName}
	}
	return p, nil
}

// Create inserts a project
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query, args, err := psql.Insert("projects").
		Columns("title", "description", "category", "technologies", "github_link", "document_url",
			"status", "student_id", "supervisor_id").
		Values(p.Title, p.Description, p.Category, p.Technologies, p.GithubLink, p.DocumentURL,
			p.Status, p.StudentID, p.SupervisorID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create project query: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("studentID", p.StudentID).Msg("Error creating project")
		return fmt.Errorf("error creating project: %w", err)
	}
	return nil
}

// GetByID retrieves a project with its student
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query, args, err := selectProjects().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get project query: %w", err)
	}

	p, err := scanProject(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("error getting project: %w", err)
	}
	return p, nil
}

// Update writes the mutable columns of a project
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	query, args, err := psql.Update("projects").SetMap(map[string]interface{}{
		"title":         p.Title,
		"description":   p.Description,
		"category":      p.Category,
		"technologies":  p.Technologies,
		"github_link":   p.GithubLink,
		"document_url":  p.DocumentURL,
		"status":        p.Status,
		"supervisor_id": p.SupervisorID,
		"updated_at":    squirrel.Expr("NOW()"),
	}).Where(squirrel.Eq{"id": p.ID}).Suffix("RETURNING updated_at").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update project query: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrProjectNotFound
		}
		return fmt.Errorf("error updating project: %w", err)
	}
	return nil
}

// Delete removes a project, its comments and its views in one transaction
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE project_id = $1`, id); err != nil {
			return fmt.Errorf("error deleting project comments: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM project_views WHERE project_id = $1`, id); err != nil {
			return fmt.Errorf("error deleting project views: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("error deleting project: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrProjectNotFound
		}
		return nil
	})
}

// likeEscaper makes user text match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s as a plain substring
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// listQuery builds the filtered project listing, newest first
func listQuery(filter ProjectFilter) squirrel.SelectBuilder {
	q := selectProjects().OrderBy("p.created_at DESC", "p.id DESC")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"p.status": *filter.Status})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"p.category": filter.Category})
	}
	if filter.Technology != "" {
		q = q.Where(squirrel.ILike{"p.technologies": containsPattern(filter.Technology)})
	}
	if filter.FacultyName != "" {
		q = q.Where(squirrel.Eq{"f.name": filter.FacultyName})
	}
	if filter.DepartmentName != "" {
		q = q.Where(squirrel.Eq{"d.name": filter.DepartmentName})
	}
	if filter.CreatedFrom != nil {
		q = q.Where(squirrel.GtOrEq{"p.created_at": *filter.CreatedFrom})
	}
	if filter.CreatedBefore != nil {
		q = q.Where(squirrel.Lt{"p.created_at": *filter.CreatedBefore})
	}
	if filter.StudentID != nil {
		q = q.Where(squirrel.Eq{"p.student_id": *filter.StudentID})
	}
	if filter.StudentFacultyID != nil {
		q = q.Where(squirrel.Eq{"s.faculty_id": *filter.StudentFacultyID})
	}
	if filter.StudentDepartmentID != nil {
		q = q.Where(squirrel.Eq{"s.department_id": *filter.StudentDepartmentID})
	}
	return q
}

// List returns projects matching filter, newest first
func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	query, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list projects query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing projects")
		return nil, fmt.Errorf("error listing projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
