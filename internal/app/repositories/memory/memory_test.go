package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
)

func strPtr(s string) *string { return &s }

func setup(t *testing.T) (*DB, *repositories.Repositories, *models.Faculty, *models.Department) {
	t.Helper()
	db := Open()
	repos := NewRepositories(db)
	ctx := context.Background()

	faculty := &models.Faculty{Name: "Engineering, Design & Technology"}
	require.NoError(t, repos.FacultyRepository.Create(ctx, faculty))
	dept := &models.Department{Name: "Computing", FacultyID: faculty.ID}
	require.NoError(t, repos.DepartmentRepository.Create(ctx, dept))
	return db, repos, faculty, dept
}

func createStudent(t *testing.T, repos *repositories.Repositories, email, access string, f *models.Faculty, d *models.Department) *models.User {
	t.Helper()
	u := &models.User{
		Name:         "Student " + email,
		Email:        email,
		Password:     "hash",
		Role:         models.RoleStudent,
		FacultyID:    &f.ID,
		DepartmentID: &d.ID,
		IsActive:     true,
		AccessNumber: strPtr(access),
	}
	require.NoError(t, repos.UserRepository.Create(context.Background(), u))
	return u
}

func TestUserRepository_UniqueEmailAndAccessNumber(t *testing.T) {
	_, repos, f, d := setup(t)
	ctx := context.Background()
	createStudent(t, repos, "Jane@UCU.ac.ug", "B123456", f, d)

	dup := &models.User{Name: "Other", Email: "jane@ucu.ac.ug", Role: models.RoleStudent, IsActive: true}
	err := repos.UserRepository.Create(ctx, dup)
	assert.True(t, errors.Is(err, apperrors.ErrEmailAlreadyExists))

	dupAccess := &models.User{Name: "Other", Email: "other@ucu.ac.ug", Role: models.RoleStudent, AccessNumber: strPtr("B123456")}
	err = repos.UserRepository.Create(ctx, dupAccess)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	found, err := repos.UserRepository.GetByEmail(ctx, " JANE@ucu.ac.ug ")
	require.NoError(t, err)
	assert.Equal(t, "jane@ucu.ac.ug", found.Email)
	require.NotNil(t, found.Faculty)
	assert.Equal(t, f.Name, found.Faculty.Name)

	byAccess, err := repos.UserRepository.GetByAccessNumber(ctx, "B123456")
	require.NoError(t, err)
	assert.Equal(t, found.ID, byAccess.ID)

	exists, err := repos.UserRepository.AccessNumberExists(ctx, "B999999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	_, repos, f, d := setup(t)
	ctx := context.Background()
	u := createStudent(t, repos, "copy@ucu.ac.ug", "B111111", f, d)

	got, err := repos.UserRepository.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Name = "Changed"

	again, err := repos.UserRepository.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Changed", again.Name)
}

func TestUserRepository_ListFilters(t *testing.T) {
	_, repos, f, d := setup(t)
	ctx := context.Background()
	a := createStudent(t, repos, "a@ucu.ac.ug", "B100001", f, d)
	b := createStudent(t, repos, "b@ucu.ac.ug", "B100002", f, d)
	b.IsActive = false
	require.NoError(t, repos.UserRepository.Update(ctx, b))

	role := models.RoleStudent
	active, err := repos.UserRepository.List(ctx, repositories.UserFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	all, err := repos.UserRepository.List(ctx, repositories.UserFilter{Role: &role, IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "newest first")
}

func TestUserRepository_ResetToken(t *testing.T) {
	db, repos, f, d := setup(t)
	ctx := context.Background()
	u := createStudent(t, repos, "reset@ucu.ac.ug", "B200000", f, d)

	now := db.Now()
	expires := now.Add(time.Hour)
	require.NoError(t, repos.UserRepository.SetResetToken(ctx, u.ID, strPtr("hash"), &expires))

	got, err := repos.UserRepository.GetByResetTokenHash(ctx, "hash", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repos.UserRepository.GetByResetTokenHash(ctx, "hash", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	require.NoError(t, repos.UserRepository.UpdatePassword(ctx, u.ID, "newhash"))
	_, err = repos.UserRepository.GetByResetTokenHash(ctx, "hash", now)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestOrgRepositories(t *testing.T) {
	_, repos, f, _ := setup(t)
	ctx := context.Background()

	err := repos.FacultyRepository.Create(ctx, &models.Faculty{Name: f.Name})
	assert.ErrorIs(t, err, apperrors.ErrFacultyAlreadyExists)

	err = repos.DepartmentRepository.Create(ctx, &models.Department{Name: "Computing", FacultyID: f.ID})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentAlreadyExists)

	require.NoError(t, repos.DepartmentRepository.Create(ctx, &models.Department{Name: "Architecture", FacultyID: f.ID}))

	got, err := repos.FacultyRepository.GetByID(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, got.Departments, 2)
	assert.Equal(t, "Architecture", got.Departments[0].Name)

	_, err = repos.DepartmentRepository.GetByName(ctx, f.ID+100, "Computing")
	assert.ErrorIs(t, err, apperrors.ErrDepartmentNotFound)
}

func TestProjectRepository_ListAndCascadeDelete(t *testing.T) {
	_, repos, f, d := setup(t)
	ctx := context.Background()
	s := createStudent(t, repos, "p@ucu.ac.ug", "B300000", f, d)

	ai := &models.Project{Title: "Vision", Description: "d", Category: "AI", Technologies: "Python, PyTorch", Status: models.StatusApproved, StudentID: s.ID}
	web := &models.Project{Title: "Portal", Description: "d", Category: "Web", Technologies: "Go", Status: models.StatusPending, StudentID: s.ID}
	require.NoError(t, repos.ProjectRepository.Create(ctx, ai))
	require.NoError(t, repos.ProjectRepository.Create(ctx, web))

	approved := models.StatusApproved
	list, err := repos.ProjectRepository.List(ctx, repositories.ProjectFilter{Status: &approved, Category: "AI"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ai.ID, list[0].ID)
	require.NotNil(t, list[0].Student)
	assert.Equal(t, s.Name, list[0].Student.Name)

	byTech, err := repos.ProjectRepository.List(ctx, repositories.ProjectFilter{Technology: "pytorch"})
	require.NoError(t, err)
	require.Len(t, byTech, 1)

	byFaculty, err := repos.ProjectRepository.List(ctx, repositories.ProjectFilter{FacultyName: f.Name})
	require.NoError(t, err)
	require.Len(t, byFaculty, 2)
	assert.Equal(t, web.ID, byFaculty[0].ID)

	require.NoError(t, repos.CommentRepository.Create(ctx, &models.Comment{Content: "nice", ProjectID: ai.ID, UserID: s.ID}))
	require.NoError(t, repos.ProjectViewRepository.Record(ctx, &models.ProjectView{ProjectID: ai.ID}))

	require.NoError(t, repos.ProjectRepository.Delete(ctx, ai.ID))
	comments, err := repos.CommentRepository.ListByProject(ctx, ai.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	views, err := repos.ProjectViewRepository.CountByProject(ctx, ai.ID)
	require.NoError(t, err)
	assert.Zero(t, views)

	assert.ErrorIs(t, repos.ProjectRepository.Delete(ctx, ai.ID), apperrors.ErrProjectNotFound)
}

func TestAnalyticsRepository(t *testing.T) {
	_, repos, f, d := setup(t)
	ctx := context.Background()
	s1 := createStudent(t, repos, "s1@ucu.ac.ug", "B400001", f, d)
	s2 := createStudent(t, repos, "s2@ucu.ac.ug", "B400002", f, d)

	for i, tech := range []string{"Go", "Python", "Go, React"} {
		student := s1
		if i == 1 {
			student = s2
		}
		require.NoError(t, repos.ProjectRepository.Create(ctx, &models.Project{
			Title: "P", Description: "d", Category: "AI", Technologies: tech,
			Status: models.StatusPending, StudentID: student.ID,
		}))
	}

	total, err := repos.AnalyticsRepository.CountProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	lists, err := repos.AnalyticsRepository.TechnologyLists(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Python", "Go, React"}, lists)

	top, err := repos.AnalyticsRepository.TopStudents(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, s1.ID, top[0].StudentID)
	assert.Equal(t, int64(2), top[0].ProjectCount)

	byFaculty, err := repos.AnalyticsRepository.CountByFaculty(ctx)
	require.NoError(t, err)
	assert.Equal(t, []repositories.FacultyCount{{Faculty: f.Name, Count: 3}}, byFaculty)

	recent, err := repos.AnalyticsRepository.RecentProjects(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
