package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ucu/innovators-hub/internal/app/models"
)

// AnalyticsRepository runs the dashboard aggregate queries
type AnalyticsRepository struct {
	db *pgxpool.Pool
}

var _ IAnalyticsRepository = (*AnalyticsRepository)(nil)

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("error running count: %w", err)
	}
	return n, nil
}

// CountProjects counts every project
func (r *AnalyticsRepository) CountProjects(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM projects`)
}

// CountViews counts every view event
func (r *AnalyticsRepository) CountViews(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM project_views`)
}

// CountByStatus counts projects per moderation state
func (r *AnalyticsRepository) CountByStatus(ctx context.Context) (map[models.ProjectStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("error counting projects by status: %w", err)
	}
	defer rows.Close()

	counts := map[models.ProjectStatus]int64{}
	for rows.Next() {
		var status models.ProjectStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountByFaculty counts projects per faculty of the owning student
func (r *AnalyticsRepository) CountByFaculty(ctx context.Context) ([]FacultyCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.name, COUNT(p.id)
		FROM projects p
		JOIN users u ON u.id = p.student_id
		JOIN faculties f ON f.id = u.faculty_id
		GROUP BY f.name
		ORDER BY f.name`)
	if err != nil {
		return nil, fmt.Errorf("error counting projects by faculty: %w", err)
	}
	defer rows.Close()

	counts := []FacultyCount{}
	for rows.Next() {
		var c FacultyCount
		if err := rows.Scan(&c.Faculty, &c.Count); err != nil {
			return nil, fmt.Errorf("error scanning faculty count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// RecentProjects returns the newest projects with the student name
func (r *AnalyticsRepository) RecentProjects(ctx context.Context, limit int) ([]*models.Project, error) {
	query, args, err := selectProjects().OrderBy("p.created_at DESC", "p.id DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent projects query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing recent projects: %w", err)
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

// TechnologyLists returns every project's technology text in creation order
func (r *AnalyticsRepository) TechnologyLists(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT technologies FROM projects ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error listing technologies: %w", err)
	}
	defer rows.Close()

	lists := []string{}
	for rows.Next() {
		var tech string
		if err := rows.Scan(&tech); err != nil {
			return nil, fmt.Errorf("error scanning technologies: %w", err)
		}
		lists = append(lists, tech)
	}
	return lists, rows.Err()
}

// TopStudents returns the students owning the most projects
func (r *AnalyticsRepository) TopStudents(ctx context.Context, limit int) ([]StudentCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.name, COUNT(p.id) AS project_count
		FROM projects p
		JOIN users u ON u.id = p.student_id
		GROUP BY u.id, u.name
		ORDER BY project_count DESC, u.id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing top students: %w", err)
	}
	defer rows.Close()

	counts := []StudentCount{}
	for rows.Next() {
		var c StudentCount
		if err := rows.Scan(&c.StudentID, &c.StudentName, &c.ProjectCount); err != nil {
			return nil, fmt.Errorf("error scanning student count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
