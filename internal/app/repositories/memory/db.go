// Package memory keeps every repository in process memory. It backs the
// "memory" database driver and the service and controller tests.
package memory

import (
	"sync"
	"time"

	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/repositories"
)

// DB is the shared in-memory state
type DB struct {
	mu sync.RWMutex

	// Now stamps created/updated times; tests may replace it
	Now func() time.Time

	nextID      int64
	users       map[int64]*models.User
	faculties   map[int64]*models.Faculty
	departments map[int64]*models.Department
	projects    map[int64]*models.Project
	comments    map[int64]*models.Comment
	views       map[int64]*models.ProjectView
}

// Open creates an empty in-memory database
func Open() *DB {
	return &DB{
		Now:         func() time.Time { return time.Now().UTC() },
		users:       map[int64]*models.User{},
		faculties:   map[int64]*models.Faculty{},
		departments: map[int64]*models.Department{},
		projects:    map[int64]*models.Project{},
		comments:    map[int64]*models.Comment{},
		views:       map[int64]*models.ProjectView{},
	}
}

// NewRepositories wires every in-memory repository over one DB
func NewRepositories(db *DB) *repositories.Repositories {
	return &repositories.Repositories{
		UserRepository:        NewUserRepository(db),
		FacultyRepository:     NewFacultyRepository(db),
		DepartmentRepository:  NewDepartmentRepository(db),
		ProjectRepository:     NewProjectRepository(db),
		CommentRepository:     NewCommentRepository(db),
		ProjectViewRepository: NewProjectViewRepository(db),
		AnalyticsRepository:   NewAnalyticsRepository(db),
	}
}

// id must be called with mu held for writing
func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

func copyUser(u *models.User) *models.User {
	cp := *u
	cp.Faculty = nil
	cp.Department = nil
	return &cp
}

// withOrg attaches faculty and department; mu must be held
func (db *DB) withOrg(u *models.User) *models.User {
	cp := copyUser(u)
	if cp.FacultyID != nil {
		if f, ok := db.faculties[*cp.FacultyID]; ok {
			cp.Faculty = &models.Faculty{ID: f.ID, Name: f.Name}
		}
	}
	if cp.DepartmentID != nil {
		if d, ok := db.departments[*cp.DepartmentID]; ok {
			cp.Department = &models.Department{ID: d.ID, Name: d.Name, FacultyID: d.FacultyID}
		}
	}
	return cp
}

// withStudent copies p and attaches its student; mu must be held
func (db *DB) withStudent(p *models.Project) *models.Project {
	cp := *p
	cp.Student = nil
	cp.Supervisor = nil
	if s, ok := db.users[p.StudentID]; ok {
		cp.Student = db.withOrg(s)
	}
	return &cp
}

// newerFirst orders by creation time then id, both descending
func newerFirst(aAt time.Time, aID int64, bAt time.Time, bID int64) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return aID > bID
}
