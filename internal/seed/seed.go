// Package seed loads the university org directory and demo accounts at startup.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appModels "github.com/ucu/innovators-hub/internal/app/models"
	appRepos "github.com/ucu/innovators-hub/internal/app/repositories"
	appServices "github.com/ucu/innovators-hub/internal/app/services"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
	"github.com/ucu/innovators-hub/internal/pkg/auth"
)

// DemoPassword is the password of every seeded account
const DemoPassword = "admin123"

// DemoStudentAccessNumber is the access number of the seeded student
const DemoStudentAccessNumber = "B100001"

// FacultySeed is a faculty with its departments
type FacultySeed struct {
	Name        string
	Departments []string
}

// Faculties is the default org directory
var Faculties = []FacultySeed{
	{
		Name: "Faculty of Agricultural Sciences",
		Departments: []string{
			"Department of Agronomy",
			"Department of Horticulture",
			"Department of Soil Science",
			"Department of Food Technology",
			"Department of Environmental Science",
		},
	},
	{
		Name: "Faculty of Engineering, Design & Technology",
		Departments: []string{
			"Department of Mechanical Engineering",
			"Department of Electrical Engineering",
			"Department of Civil Engineering",
			"Department of Computer Engineering",
			"Department of Industrial Design",
		},
	},
	{
		Name: "Faculty of Public Health, Nursing & Midwifery",
		Departments: []string{
			"Department of Nursing",
			"Department of Midwifery",
			"Department of Public Health",
			"Department of Medical Laboratory Science",
			"Department of Biomedical Engineering",
		},
	},
	{
		Name: "Faculty of Information Technology",
		Departments: []string{
			"Department of Computer Science",
			"Department of Software Engineering",
			"Department of Cybersecurity",
			"Department of Data Science",
		},
	},
	{
		Name: "Faculty of Business & Management",
		Departments: []string{
			"Department of Business Administration",
			"Department of Management",
			"Department of Economics",
		},
	},
}

// engineering hosts the demo staff and student
const engineering = "Faculty of Engineering, Design & Technology"

type demoUser struct {
	email string
	name  string
	role  appModels.RoleType
	// inFaculty places the account in the first engineering department
	inFaculty bool
}

var demoUsers = []demoUser{
	{email: "admin@ucu.ac.ug", name: "System Administrator", role: appModels.RoleAdmin},
	{email: "faculty@ucu.ac.ug", name: "Faculty Admin", role: appModels.RoleFacultyAdmin, inFaculty: true},
	{email: "supervisor@ucu.ac.ug", name: "Dr. Jane Smith", role: appModels.RoleSupervisor, inFaculty: true},
	{email: "student@ucu.ac.ug", name: "John Doe", role: appModels.RoleStudent, inFaculty: true},
}

// CreateDefaultData creates the default faculties, departments and demo
// accounts that do not exist yet. Existing records are left untouched.
func CreateDefaultData(ctx context.Context, faculties appServices.FacultyService, users appRepos.IUserRepository, hasher auth.PasswordHasher, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Faculties/Departments/Users)...")
	var finalErr error

	var engFaculty *appModels.Faculty
	var engDepartment *appModels.Department
	for _, fs := range Faculties {
		faculty, err := faculties.EnsureFaculty(ctx, fs.Name)
		if err != nil {
			lgr.Error().Err(err).Str("faculty", fs.Name).Msg("Error creating faculty")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		for i, name := range fs.Departments {
			department, err := faculties.EnsureDepartment(ctx, faculty.ID, name)
			if err != nil {
				lgr.Error().Err(err).Str("department", name).Msg("Error creating department")
				finalErr = errors.Join(finalErr, err)
				continue
			}
			if fs.Name == engineering && i == 0 {
				engFaculty, engDepartment = faculty, department
			}
		}
	}

	hash, err := hasher.Hash(DemoPassword)
	if err != nil {
		return errors.Join(finalErr, fmt.Errorf("error hashing demo password: %w", err))
	}

	for _, du := range demoUsers {
		if du.inFaculty && (engFaculty == nil || engDepartment == nil) {
			lgr.Warn().Str("email", du.email).Msg("Engineering faculty missing, skipping demo account")
			continue
		}
		created, err := ensureUser(ctx, users, du, hash, engFaculty, engDepartment)
		if err != nil {
			lgr.Error().Err(err).Str("email", du.email).Msg("Error creating demo account")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created {
			lgr.Info().Str("email", du.email).Str("role", string(du.role)).Msg("Demo account created")
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data check/creation complete.")
	}
	return finalErr
}

func ensureUser(ctx context.Context, users appRepos.IUserRepository, du demoUser, hash string, faculty *appModels.Faculty, department *appModels.Department) (bool, error) {
	exists, err := users.EmailExists(ctx, du.email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	user := &appModels.User{
		Name:     du.name,
		Email:    du.email,
		Password: hash,
		Role:     du.role,
		IsActive: true,
	}
	if du.inFaculty {
		user.FacultyID = &faculty.ID
		user.DepartmentID = &department.ID
	}
	if du.role == appModels.RoleStudent {
		taken, err := users.AccessNumberExists(ctx, DemoStudentAccessNumber)
		if err != nil {
			return false, err
		}
		if !taken {
			number := DemoStudentAccessNumber
			user.AccessNumber = &number
		}
	}

	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
