package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	authz "github.com/ucu/innovators-hub/internal/app/auth"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/filestorage"
	"github.com/ucu/innovators-hub/internal/pkg/helpers"
)

// ProjectService is the project registry and its moderation workflow
type ProjectService interface {
	Create(ctx context.Context, studentID int64, fields dto.ProjectFields, documentRef string) (*models.Project, error)
	// Update applies a partial edit. An edit by the owning student resets the status to pending.
	Update(ctx context.Context, projectID, userID int64, fields dto.ProjectFields, documentRef string) (*models.Project, error)
	Review(ctx context.Context, projectID, reviewerID int64, status string) (*models.Project, error)
	Delete(ctx context.Context, projectID, userID int64) error

	// Get records a view and returns the project with its view count
	Get(ctx context.Context, projectID int64, requesterAddress string) (*models.Project, int64, error)
	ListPublic(ctx context.Context, q dto.ProjectListQuery) ([]*models.Project, error)
	ListForReviewer(ctx context.Context, reviewerID int64) ([]*models.Project, error)
	ListMine(ctx context.Context, userID int64) ([]*models.Project, error)

	AddComment(ctx context.Context, projectID, userID int64, content string) (*models.Comment, error)
	ListComments(ctx context.Context, projectID int64) ([]*models.Comment, error)
}

type projectServiceImpl struct {
	projects repositories.IProjectRepository
	comments repositories.ICommentRepository
	views    repositories.IProjectViewRepository
	users    repositories.IUserRepository
	authz    *authz.AuthorizationService
	files    filestorage.Storage
	logger   zerolog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	repos *repositories.Repositories,
	authorization *authz.AuthorizationService,
	files filestorage.Storage,
	logger zerolog.Logger,
) ProjectService {
	return &projectServiceImpl{
		projects: repos.ProjectRepository,
		comments: repos.CommentRepository,
		views:    repos.ProjectViewRepository,
		users:    repos.UserRepository,
		authz:    authorization,
		files:    files,
		logger:   logger,
	}
}

// checkSupervisor verifies a referenced supervisor exists with the supervisor role
func (s *projectServiceImpl) checkSupervisor(ctx context.Context, supervisorID *int64) error {
	if supervisorID == nil {
		return nil
	}
	u, err := s.users.GetByID(ctx, *supervisorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewValidationError("supervisor does not exist")
		}
		return err
	}
	if u.Role != models.RoleSupervisor {
		return apperrors.NewValidationError("assigned user is not a supervisor")
	}
	return nil
}

// Create submits a new project in the pending state
func (s *projectServiceImpl) Create(ctx context.Context, studentID int64, fields dto.ProjectFields, documentRef string) (*models.Project, error) {
	if _, _, err := s.authz.RequireFor(ctx, studentID, authz.ActionProjectCreate, authz.Target{}); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(fields.Title)
	description := strings.TrimSpace(fields.Description)
	category := strings.TrimSpace(fields.Category)
	if title == "" || description == "" || category == "" {
		return nil, apperrors.NewValidationError("title, description and category are required")
	}
	if err := s.checkSupervisor(ctx, fields.SupervisorID); err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:        title,
		Description:  description,
		Category:     category,
		Technologies: strings.TrimSpace(fields.Technologies),
		GithubLink:   optional(fields.GithubLink),
		DocumentURL:  optional(documentRef),
		Status:       models.StatusPending,
		StudentID:    studentID,
		SupervisorID: fields.SupervisorID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("projectID", project.ID).Int64("studentID", studentID).Msg("Project submitted")
	return s.projects.GetByID(ctx, project.ID)
}

// Update edits a project owned by the caller
func (s *projectServiceImpl) Update(ctx context.Context, projectID, userID int64, fields dto.ProjectFields, documentRef string) (*models.Project, error) {
	subject, err := s.authz.Subject(ctx, userID)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Require(subject, authz.ActionProjectUpdate, authz.ProjectTarget(project)); err != nil {
		return nil, err
	}
	if err := s.checkSupervisor(ctx, fields.SupervisorID); err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(fields.Title); v != "" {
		project.Title = v
	}
	if v := strings.TrimSpace(fields.Description); v != "" {
		project.Description = v
	}
	if v := strings.TrimSpace(fields.Category); v != "" {
		project.Category = v
	}
	if v := strings.TrimSpace(fields.Technologies); v != "" {
		project.Technologies = v
	}
	if v := optional(fields.GithubLink); v != nil {
		project.GithubLink = v
	}
	if fields.SupervisorID != nil {
		project.SupervisorID = fields.SupervisorID
	}

	previousDoc := deref(project.DocumentURL)
	if v := optional(documentRef); v != nil {
		project.DocumentURL = v
	}
	if subject.Role == models.RoleStudent {
		project.Status = models.StatusPending
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	if documentRef != "" && previousDoc != "" && previousDoc != documentRef {
		s.discard(previousDoc)
	}

	s.logger.Info().Int64("projectID", projectID).Int64("userID", userID).Str("status", string(project.Status)).Msg("Project updated")
	return s.projects.GetByID(ctx, projectID)
}

// Review sets the moderation status chosen by an authorized reviewer
func (s *projectServiceImpl) Review(ctx context.Context, projectID, reviewerID int64, status string) (*models.Project, error) {
	newStatus := models.ProjectStatus(strings.ToLower(strings.TrimSpace(status)))
	if !newStatus.IsValid() {
		return nil, apperrors.NewValidationError("status must be one of: pending, approved, rejected")
	}

	subject, err := s.authz.Subject(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.Require(subject, authz.ActionProjectReview, authz.ProjectTarget(project)); err != nil {
		return nil, err
	}

	project.Status = newStatus
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("projectID", projectID).Int64("reviewerID", reviewerID).Str("status", string(newStatus)).Msg("Project reviewed")
	return project, nil
}

// Delete removes a project together with its comments and views
func (s *projectServiceImpl) Delete(ctx context.Context, projectID, userID int64) error {
	subject, err := s.authz.Subject(ctx, userID)
	if err != nil {
		return err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if _, err := s.authz.Require(subject, authz.ActionProjectDelete, authz.ProjectTarget(project)); err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}
	if doc := deref(project.DocumentURL); doc != "" {
		s.discard(doc)
	}

	s.logger.Info().Int64("projectID", projectID).Int64("userID", userID).Msg("Project deleted")
	return nil
}

func (s *projectServiceImpl) discard(ref string) {
	if s.files == nil {
		return
	}
	if err := s.files.Delete(ref); err != nil {
		s.logger.Warn().Err(err).Str("ref", ref).Msg("Error removing project document")
	}
}

// Get returns a project of any status and logs the view
func (s *projectServiceImpl) Get(ctx context.Context, projectID int64, requesterAddress string) (*models.Project, int64, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}

	view := &models.ProjectView{ProjectID: projectID, IPAddress: optional(requesterAddress)}
	if err := s.views.Record(ctx, view); err != nil {
		return nil, 0, err
	}
	count, err := s.views.CountByProject(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	return project, count, nil
}

// ListPublic returns approved projects matching the gallery filters
func (s *projectServiceImpl) ListPublic(ctx context.Context, q dto.ProjectListQuery) ([]*models.Project, error) {
	approved := models.StatusApproved
	filter := repositories.ProjectFilter{
		Status:         &approved,
		Category:       strings.TrimSpace(q.Category),
		Technology:     strings.TrimSpace(q.Technology),
		FacultyName:    strings.TrimSpace(q.Faculty),
		DepartmentName: strings.TrimSpace(q.Department),
	}
	if q.Year != 0 {
		from, before := helpers.YearBounds(q.Year)
		filter.CreatedFrom = &from
		filter.CreatedBefore = &before
	}
	return s.projects.List(ctx, filter)
}

// ListForReviewer returns projects of every status owned by students in the reviewer's scope
func (s *projectServiceImpl) ListForReviewer(ctx context.Context, reviewerID int64) ([]*models.Project, error) {
	_, scope, err := s.authz.RequireFor(ctx, reviewerID, authz.ActionProjectListReview, authz.Target{})
	if err != nil {
		return nil, err
	}

	filter := repositories.ProjectFilter{}
	if !scope.All {
		filter.StudentFacultyID = scope.FacultyID
		filter.StudentDepartmentID = scope.DepartmentID
	}
	return s.projects.List(ctx, filter)
}

// ListMine returns every project owned by the caller
func (s *projectServiceImpl) ListMine(ctx context.Context, userID int64) ([]*models.Project, error) {
	_, scope, err := s.authz.RequireFor(ctx, userID, authz.ActionProjectListOwn, authz.Target{})
	if err != nil {
		return nil, err
	}
	return s.projects.List(ctx, repositories.ProjectFilter{StudentID: scope.OwnerID})
}

// AddComment appends a comment by the caller
func (s *projectServiceImpl) AddComment(ctx context.Context, projectID, userID int64, content string) (*models.Comment, error) {
	subject, _, err := s.authz.RequireFor(ctx, userID, authz.ActionCommentCreate, authz.Target{})
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required")
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: content, ProjectID: projectID, UserID: userID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.User = &models.User{ID: subject.ID, Name: subject.Name, Role: subject.Role}
	return comment, nil
}

// ListComments returns the comments of a project, newest first
func (s *projectServiceImpl) ListComments(ctx context.Context, projectID int64) ([]*models.Comment, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.comments.ListByProject(ctx, projectID)
}
