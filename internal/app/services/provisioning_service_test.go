package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
)

func TestAccessNumberPrefix(t *testing.T) {
	tests := map[string]string{
		"Faculty of Agricultural Sciences":                  "A",
		"Faculty of Engineering, Design and Technology":     "B",
		"School of Nursing and Midwifery":                   "C",
		"Faculty of Public Health":                          "C",
		"Faculty of Law":                                    "U",
		"Faculty of Engineering":                            "U",
		"faculty of engineering, design & technology (FEDT)": "B",
	}
	for name, want := range tests {
		assert.Equal(t, want, accessNumberPrefix(name), name)
	}
}

func TestProvision_FacultyAdminForcedFacultyAndCoercedRole(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Provisioning.Provision(f.ctx, f.facultyAdmin.ID, &dto.RegisterRequest{
		Name:      "New Person",
		Email:     "New.Person@ucu.ac.ug",
		Role:      "admin",
		FacultyID: &f.agriculture.ID,
	})
	require.NoError(t, err)

	assert.True(t, resp.EmailSent)
	assert.Empty(t, resp.TempPassword)
	assert.Equal(t, "new.person@ucu.ac.ug", resp.User.Email)
	assert.Equal(t, string(models.RoleStudent), resp.User.Role)
	require.NotNil(t, resp.User.FacultyID)
	assert.Equal(t, f.engineering.ID, *resp.User.FacultyID)
	require.NotNil(t, resp.User.AccessNumber)
	assert.True(t, strings.HasPrefix(*resp.User.AccessNumber, "B"))

	mail := f.mailer.last()
	assert.Equal(t, "new.person@ucu.ac.ug", mail.to)
	assert.Contains(t, mail.body, tempPasswordPrefix)
	assert.Contains(t, mail.body, *resp.User.AccessNumber)
}

func TestProvision_AdminGrantsAnyRole(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Provisioning.Provision(f.ctx, f.admin.ID, &dto.RegisterRequest{
		Name:         "Reviewer",
		Email:        "reviewer@ucu.ac.ug",
		Role:         "supervisor",
		FacultyID:    &f.agriculture.ID,
		DepartmentID: &f.agronomy.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleSupervisor), resp.User.Role)
	assert.Nil(t, resp.User.AccessNumber)
	assert.Equal(t, f.agriculture.ID, *resp.User.FacultyID)
}

func TestProvision_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		creator int64
		req     dto.RegisterRequest
		kind    error
	}{
		{"missing name", f.admin.ID, dto.RegisterRequest{Email: "x@ucu.ac.ug", FacultyID: &f.engineering.ID}, apperrors.ErrValidationFailed},
		{"missing email", f.admin.ID, dto.RegisterRequest{Name: "X", FacultyID: &f.engineering.ID}, apperrors.ErrValidationFailed},
		{"admin without faculty", f.admin.ID, dto.RegisterRequest{Name: "X", Email: "x@ucu.ac.ug"}, apperrors.ErrValidationFailed},
		{"unknown faculty", f.admin.ID, dto.RegisterRequest{Name: "X", Email: "x@ucu.ac.ug", FacultyID: int64Ptr(9999)}, apperrors.ErrValidationFailed},
		{"department of another faculty", f.admin.ID, dto.RegisterRequest{Name: "X", Email: "x@ucu.ac.ug", FacultyID: &f.engineering.ID, DepartmentID: &f.agronomy.ID}, apperrors.ErrValidationFailed},
		{"duplicate email", f.admin.ID, dto.RegisterRequest{Name: "X", Email: "STUDENT1@ucu.ac.ug", FacultyID: &f.engineering.ID}, apperrors.ErrConflict},
		{"student creator", f.student.ID, dto.RegisterRequest{Name: "X", Email: "x@ucu.ac.ug", FacultyID: &f.engineering.ID}, apperrors.ErrPermissionDenied},
		{"supervisor creator", f.supervisor.ID, dto.RegisterRequest{Name: "X", Email: "x@ucu.ac.ug", FacultyID: &f.engineering.ID}, apperrors.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.Provisioning.Provision(f.ctx, tt.creator, &req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestProvision_MailFailureReturnsTemporaryPassword(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errMailDown

	resp, err := f.svc.Provisioning.Provision(f.ctx, f.admin.ID, &dto.RegisterRequest{
		Name:      "Offline",
		Email:     "offline@ucu.ac.ug",
		FacultyID: &f.engineering.ID,
	})
	require.NoError(t, err)
	assert.False(t, resp.EmailSent)
	assert.True(t, strings.HasPrefix(resp.TempPassword, tempPasswordPrefix))
	assert.Len(t, resp.TempPassword, len(tempPasswordPrefix)+4)

	stored, err := f.repos.UserRepository.GetByEmail(f.ctx, "offline@ucu.ac.ug")
	require.NoError(t, err)
	assert.True(t, fakeHasher{}.Verify(stored.Password, resp.TempPassword))
}

func TestProvision_AlternativeEmailReceivesCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Provisioning.Provision(f.ctx, f.admin.ID, &dto.RegisterRequest{
		Name:             "Alt",
		Email:            "alt@ucu.ac.ug",
		FacultyID:        &f.engineering.ID,
		AlternativeEmail: "alt.personal@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "alt.personal@example.com", f.mailer.last().to)
}

func TestProvision_AccessNumberRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errMailDown

	resp, err := f.svc.Provisioning.Provision(f.ctx, f.admin.ID, &dto.RegisterRequest{
		Name:      "Farmer",
		Email:     "farmer@ucu.ac.ug",
		FacultyID: &f.agriculture.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User.AccessNumber)
	assert.Regexp(t, `^A\d{6}$`, *resp.User.AccessNumber)

	found, err := f.repos.UserRepository.GetByAccessNumber(f.ctx, *resp.User.AccessNumber)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, found.ID)

	login, err := f.svc.Auth.Login(f.ctx, &dto.LoginRequest{Identifier: *resp.User.AccessNumber, Password: resp.TempPassword})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestProvision_ThousandStudentsGetUniqueAccessNumbers(t *testing.T) {
	f := newFixture(t)

	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		resp, err := f.svc.Provisioning.Provision(f.ctx, f.facultyAdmin.ID, &dto.RegisterRequest{
			Name:  fmt.Sprintf("Student %d", i),
			Email: fmt.Sprintf("bulk%d@ucu.ac.ug", i),
		})
		require.NoError(t, err)
		require.NotNil(t, resp.User.AccessNumber)
		number := *resp.User.AccessNumber
		assert.False(t, seen[number], "duplicate access number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, 1000)
}

func TestProvision_ExhaustedRetriesHitUniqueIndex(t *testing.T) {
	f := newFixtureWithRandom(t, fixedRandom(42))

	_, err := f.svc.Provisioning.Provision(f.ctx, f.admin.ID, &dto.RegisterRequest{Name: "One", Email: "one@ucu.ac.ug", FacultyID: &f.engineering.ID})
	require.NoError(t, err)

	_, err = f.svc.Provisioning.Provision(f.ctx, f.admin.ID, &dto.RegisterRequest{Name: "Two", Email: "two@ucu.ac.ug", FacultyID: &f.engineering.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}
