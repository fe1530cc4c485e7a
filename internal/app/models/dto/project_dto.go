package dto

import (
	"time"

	"github.com/ucu/innovators-hub/internal/app/models"
)

// ProjectFields are the content fields of a project, read from a multipart form
type ProjectFields struct {
	Title        string `form:"title" json:"title"`
	Description  string `form:"description" json:"description"`
	Category     string `form:"category" json:"category"`
	Technologies string `form:"technologies" json:"technologies"`
	GithubLink   string `form:"githubLink" json:"githubLink"`
	SupervisorID *int64 `form:"supervisorId" json:"supervisorId"`
}

// ReviewProjectRequest sets the moderation status of a project
type ReviewProjectRequest struct {
	Status string `json:"status" binding:"required" example:"approved"`
}

// ProjectListQuery holds the public gallery filters
type ProjectListQuery struct {
	Category   string `form:"category"`
	Technology string `form:"technology"`
	Faculty    string `form:"faculty"`
	Department string `form:"department"`
	Year       int    `form:"year"`
}

// ProjectStudent is the owning student as shown with a project
type ProjectStudent struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Faculty    *OrgRef `json:"faculty,omitempty"`
	Department *OrgRef `json:"department,omitempty"`
}

// ProjectResponse is the project shape returned by the API
type ProjectResponse struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Technologies string          `json:"technologies"`
	GithubLink   *string         `json:"githubLink,omitempty"`
	DocumentURL  *string         `json:"documentUrl,omitempty"`
	Status       string          `json:"status"`
	StudentID    int64           `json:"studentId"`
	SupervisorID *int64          `json:"supervisorId,omitempty"`
	Student      *ProjectStudent `json:"student,omitempty"`
	ViewCount    *int64          `json:"viewCount,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CommentRequest adds a comment to a project
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CommentAuthor is the author shown with a comment
type CommentAuthor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// CommentResponse is the comment shape returned by the API
type CommentResponse struct {
	ID        int64          `json:"id"`
	Content   string         `json:"content"`
	ProjectID int64          `json:"projectId"`
	UserID    int64          `json:"userId"`
	User      *CommentAuthor `json:"user,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewProjectResponse converts a project to its response shape
func NewProjectResponse(p *models.Project) *ProjectResponse {
	if p == nil {
		return nil
	}
	resp := &ProjectResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Category:     p.Category,
		Technologies: p.Technologies,
		GithubLink:   p.GithubLink,
		DocumentURL:  p.DocumentURL,
		Status:       string(p.Status),
		StudentID:    p.StudentID,
		SupervisorID: p.SupervisorID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if s := p.Student; s != nil {
		resp.Student = &ProjectStudent{ID: s.ID, Name: s.Name, Email: s.Email}
		if s.Faculty != nil {
			resp.Student.Faculty = &OrgRef{ID: s.Faculty.ID, Name: s.Faculty.Name}
		}
		if s.Department != nil {
			resp.Student.Department = &OrgRef{ID: s.Department.ID, Name: s.Department.Name}
		}
	}
	return resp
}

// NewProjectResponses converts a list of projects
func NewProjectResponses(projects []*models.Project) []*ProjectResponse {
	out := make([]*ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, NewProjectResponse(p))
	}
	return out
}

// NewCommentResponse converts a comment to its response shape
func NewCommentResponse(c *models.Comment) *CommentResponse {
	resp := &CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		ProjectID: c.ProjectID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
	}
	if c.User != nil {
		resp.User = &CommentAuthor{ID: c.User.ID, Name: c.User.Name, Role: string(c.User.Role)}
	}
	return resp
}

// NewCommentResponses converts a list of comments
func NewCommentResponses(comments []*models.Comment) []*CommentResponse {
	out := make([]*CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewCommentResponse(c))
	}
	return out
}
