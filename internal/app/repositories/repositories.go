package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/db"
)

// psql builds PostgreSQL statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// UserFilter narrows user listings. Nil fields do not filter.
type UserFilter struct {
	Role            *models.RoleType
	FacultyID       *int64
	DepartmentID    *int64
	IncludeInactive bool
}

// ProjectFilter narrows project listings. Zero values do not filter.
type ProjectFilter struct {
	Status              *models.ProjectStatus
	Category            string
	Technology          string
	FacultyName         string
	DepartmentName      string
	CreatedFrom         *time.Time
	CreatedBefore       *time.Time
	StudentID           *int64
	StudentFacultyID    *int64
	StudentDepartmentID *int64
}

// FacultyCount is the number of projects owned by students of one faculty
type FacultyCount struct {
	Faculty string `json:"faculty"`
	Count   int64  `json:"count"`
}

// StudentCount is the number of projects owned by one student
type StudentCount struct {
	StudentID    int64  `json:"studentId"`
	StudentName  string `json:"studentName"`
	ProjectCount int64  `json:"projectCount"`
}

// IUserRepository defines the interface for user-related storage operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAccessNumber(ctx context.Context, accessNumber string) (*models.User, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	AccessNumberExists(ctx context.Context, accessNumber string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetResetToken(ctx context.Context, userID int64, tokenHash *string, expires *time.Time) error
	// UpdatePassword stores a new hash and clears any reset token
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// IFacultyRepository defines faculty storage operations
type IFacultyRepository interface {
	Create(ctx context.Context, faculty *models.Faculty) error
	GetByID(ctx context.Context, id int64) (*models.Faculty, error)
	GetByName(ctx context.Context, name string) (*models.Faculty, error)
	// List returns faculties with their departments, both ordered by name
	List(ctx context.Context) ([]*models.Faculty, error)
}

// IDepartmentRepository defines department storage operations
type IDepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	GetByName(ctx context.Context, facultyID int64, name string) (*models.Department, error)
	List(ctx context.Context, facultyID *int64) ([]*models.Department, error)
}

// IProjectRepository defines project storage operations
type IProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	// GetByID returns the project with its student loaded
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	// Delete removes the project together with its comments and views
	Delete(ctx context.Context, id int64) error
	// List returns matching projects newest first with their student loaded
	List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error)
}

// ICommentRepository defines comment storage operations
type ICommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListByProject returns comments newest first with their author loaded
	ListByProject(ctx context.Context, projectID int64) ([]*models.Comment, error)
}

// IProjectViewRepository defines view log operations
type IProjectViewRepository interface {
	Record(ctx context.Context, view *models.ProjectView) error
	CountByProject(ctx context.Context, projectID int64) (int64, error)
}

// IAnalyticsRepository defines the read-only aggregate queries
type IAnalyticsRepository interface {
	CountProjects(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.ProjectStatus]int64, error)
	CountByFaculty(ctx context.Context) ([]FacultyCount, error)
	RecentProjects(ctx context.Context, limit int) ([]*models.Project, error)
	CountViews(ctx context.Context) (int64, error)
	// TechnologyLists returns every project's technology text in creation order
	TechnologyLists(ctx context.Context) ([]string, error)
	TopStudents(ctx context.Context, limit int) ([]StudentCount, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        IUserRepository
	FacultyRepository     IFacultyRepository
	DepartmentRepository  IDepartmentRepository
	ProjectRepository     IProjectRepository
	CommentRepository     ICommentRepository
	ProjectViewRepository IProjectViewRepository
	AnalyticsRepository   IAnalyticsRepository
}

// NewRepositories initializes the PostgreSQL repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(database.Pool),
		FacultyRepository:     NewFacultyRepository(database.Pool),
		DepartmentRepository:  NewDepartmentRepository(database.Pool),
		ProjectRepository:     NewProjectRepository(database),
		CommentRepository:     NewCommentRepository(database.Pool),
		ProjectViewRepository: NewProjectViewRepository(database.Pool),
		AnalyticsRepository:   NewAnalyticsRepository(database.Pool),
	}
}
