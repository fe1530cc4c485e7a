package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
)

// ProjectRepository is the in-memory project store
type ProjectRepository struct {
	db *DB
}

var _ repositories.IProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a ProjectRepository over db
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func storedProject(p *models.Project) *models.Project {
	cp := *p
	cp.Student = nil
	cp.Supervisor = nil
	return &cp
}

// Create inserts a project
func (r *ProjectRepository) Create(_ context.Context, p *models.Project) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[p.StudentID]; !ok {
		return apperrors.ErrUserNotFound
	}
	p.ID = r.db.id()
	p.CreatedAt = r.db.Now()
	p.UpdatedAt = p.CreatedAt
	r.db.projects[p.ID] = storedProject(p)
	return nil
}

// GetByID retrieves a project with its student
func (r *ProjectRepository) GetByID(_ context.Context, id int64) (*models.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.projects[id]
	if !ok {
		return nil, apperrors.ErrProjectNotFound
	}
	return r.db.withStudent(p), nil
}

// Update writes the mutable fields of a project
func (r *ProjectRepository) Update(_ context.Context, p *models.Project) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.projects[p.ID]
	if !ok {
		return apperrors.ErrProjectNotFound
	}
	p.StudentID = existing.StudentID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.db.Now()
	r.db.projects[p.ID] = storedProject(p)
	return nil
}

// Delete removes a project with its comments and views
func (r *ProjectRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.projects[id]; !ok {
		return apperrors.ErrProjectNotFound
	}
	for cid, c := range r.db.comments {
		if c.ProjectID == id {
			delete(r.db.comments, cid)
		}
	}
	for vid, v := range r.db.views {
		if v.ProjectID == id {
			delete(r.db.views, vid)
		}
	}
	delete(r.db.projects, id)
	return nil
}

func matchesProject(p *models.Project, f repositories.ProjectFilter) bool {
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Technology != "" && !strings.Contains(strings.ToLower(p.Technologies), strings.ToLower(f.Technology)) {
		return false
	}
	if f.CreatedFrom != nil && p.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedBefore != nil && !p.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	if f.StudentID != nil && p.StudentID != *f.StudentID {
		return false
	}

	s := p.Student
	if f.StudentFacultyID != nil && (s == nil || !s.InFaculty(f.StudentFacultyID)) {
		return false
	}
	if f.StudentDepartmentID != nil && (s == nil || !s.InDepartment(f.StudentDepartmentID)) {
		return false
	}
	if f.FacultyName != "" && (s == nil || s.Faculty == nil || s.Faculty.Name != f.FacultyName) {
		return false
	}
	if f.DepartmentName != "" && (s == nil || s.Department == nil || s.Department.Name != f.DepartmentName) {
		return false
	}
	return true
}

// sortedProjects must be called with mu held
func (db *DB) sortedProjects() []*models.Project {
	projects := make([]*models.Project, 0, len(db.projects))
	for _, p := range db.projects {
		projects = append(projects, db.withStudent(p))
	}
	sort.Slice(projects, func(i, j int) bool {
		return newerFirst(projects[i].CreatedAt, projects[i].ID, projects[j].CreatedAt, projects[j].ID)
	})
	return projects
}

// List returns projects matching filter, newest first
func (r *ProjectRepository) List(_ context.Context, filter repositories.ProjectFilter) ([]*models.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	projects := []*models.Project{}
	for _, p := range r.db.sortedProjects() {
		if matchesProject(p, filter) {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

// CommentRepository is the in-memory comment store
type CommentRepository struct {
	db *DB
}

var _ repositories.ICommentRepository = (*CommentRepository)(nil)

// NewCommentRepository creates a CommentRepository over db
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment
func (r *CommentRepository) Create(_ context.Context, c *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.projects[c.ProjectID]; !ok {
		return apperrors.ErrProjectNotFound
	}
	c.ID = r.db.id()
	c.CreatedAt = r.db.Now()
	cp := *c
	cp.User = nil
	r.db.comments[c.ID] = &cp
	return nil
}

// ListByProject returns the comments of a project newest first with their author
func (r *CommentRepository) ListByProject(_ context.Context, projectID int64) ([]*models.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	comments := []*models.Comment{}
	for _, c := range r.db.comments {
		if c.ProjectID != projectID {
			continue
		}
		cp := *c
		if u, ok := r.db.users[c.UserID]; ok {
			cp.User = &models.User{ID: u.ID, Name: u.Name, Role: u.Role}
		}
		comments = append(comments, &cp)
	}
	sort.Slice(comments, func(i, j int) bool {
		return newerFirst(comments[i].CreatedAt, comments[i].ID, comments[j].CreatedAt, comments[j].ID)
	})
	return comments, nil
}

// ProjectViewRepository is the in-memory view log
type ProjectViewRepository struct {
	db *DB
}

var _ repositories.IProjectViewRepository = (*ProjectViewRepository)(nil)

// NewProjectViewRepository creates a ProjectViewRepository over db
func NewProjectViewRepository(db *DB) *ProjectViewRepository {
	return &ProjectViewRepository{db: db}
}

// Record appends one view
func (r *ProjectViewRepository) Record(_ context.Context, v *models.ProjectView) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.projects[v.ProjectID]; !ok {
		return apperrors.ErrProjectNotFound
	}
	v.ID = r.db.id()
	v.ViewedAt = r.db.Now()
	cp := *v
	r.db.views[v.ID] = &cp
	return nil
}

// CountByProject counts the views of one project
func (r *ProjectViewRepository) CountByProject(_ context.Context, projectID int64) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var n int64
	for _, v := range r.db.views {
		if v.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}
