package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ucu/innovators-hub/internal/app/models"
)

// CommentRepository handles comment database operations
type CommentRepository struct {
	db *pgxpool.Pool
}

var _ ICommentRepository = (*CommentRepository)(nil)

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO comments (content, project_id, user_id) VALUES ($1, $2, $3) RETURNING id, created_at`,
		c.Content, c.ProjectID, c.UserID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// ListByProject returns the comments of a project newest first with author name and role
func (r *CommentRepository) ListByProject(ctx context.Context, projectID int64) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.content, c.project_id, c.user_id, c.created_at, u.name, u.role
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.project_id = $1
		ORDER BY c.created_at DESC, c.id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c := &models.Comment{User: &models.User{}}
		if err := rows.Scan(&c.ID, &c.Content, &c.ProjectID, &c.UserID, &c.CreatedAt, &c.User.Name, &c.User.Role); err != nil {
			return nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		c.User.ID = c.UserID
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
