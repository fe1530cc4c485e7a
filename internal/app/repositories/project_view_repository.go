package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ucu/innovators-hub/internal/app/models"
)

// ProjectViewRepository appends to and counts the view log
type ProjectViewRepository struct {
	db *pgxpool.Pool
}

var _ IProjectViewRepository = (*ProjectViewRepository)(nil)

// NewProjectViewRepository creates a new ProjectViewRepository
func NewProjectViewRepository(db *pgxpool.Pool) *ProjectViewRepository {
	return &ProjectViewRepository{db: db}
}

// Record appends one view
func (r *ProjectViewRepository) Record(ctx context.Context, v *models.ProjectView) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO project_views (project_id, ip_address) VALUES ($1, $2) RETURNING id, viewed_at`,
		v.ProjectID, v.IPAddress,
	).Scan(&v.ID, &v.ViewedAt)
	if err != nil {
		return fmt.Errorf("error recording project view: %w", err)
	}
	return nil
}

// CountByProject counts the views of one project
func (r *ProjectViewRepository) CountByProject(ctx context.Context, projectID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM project_views WHERE project_id = $1`, projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting project views: %w", err)
	}
	return n, nil
}
