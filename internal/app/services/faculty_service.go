package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
)

// FacultyService defines the interface for the org directory
type FacultyService interface {
	List(ctx context.Context) ([]*models.Faculty, error)
	Get(ctx context.Context, id int64) (*models.Faculty, error)
	ListDepartments(ctx context.Context, facultyID *int64) ([]*models.Department, error)

	// EnsureFaculty returns the named faculty, creating it when missing
	EnsureFaculty(ctx context.Context, name string) (*models.Faculty, error)
	// EnsureDepartment returns the named department of a faculty, creating it when missing
	EnsureDepartment(ctx context.Context, facultyID int64, name string) (*models.Department, error)
}

// facultyServiceImpl implements the FacultyService interface
type facultyServiceImpl struct {
	facultyRepo    repositories.IFacultyRepository
	departmentRepo repositories.IDepartmentRepository
}

// NewFacultyService creates a new faculty service instance
func NewFacultyService(facultyRepo repositories.IFacultyRepository, departmentRepo repositories.IDepartmentRepository) FacultyService {
	return &facultyServiceImpl{
		facultyRepo:    facultyRepo,
		departmentRepo: departmentRepo,
	}
}

// List returns all faculties with their departments
func (s *facultyServiceImpl) List(ctx context.Context) ([]*models.Faculty, error) {
	return s.facultyRepo.List(ctx)
}

// Get retrieves a faculty by ID
func (s *facultyServiceImpl) Get(ctx context.Context, id int64) (*models.Faculty, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("invalid faculty ID")
	}
	return s.facultyRepo.GetByID(ctx, id)
}

// ListDepartments returns departments, optionally of a single faculty
func (s *facultyServiceImpl) ListDepartments(ctx context.Context, facultyID *int64) ([]*models.Department, error) {
	if facultyID != nil {
		if _, err := s.facultyRepo.GetByID(ctx, *facultyID); err != nil {
			return nil, err
		}
	}
	return s.departmentRepo.List(ctx, facultyID)
}

func (s *facultyServiceImpl) EnsureFaculty(ctx context.Context, name string) (*models.Faculty, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("faculty name cannot be empty")
	}

	f, err := s.facultyRepo.GetByName(ctx, name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	f = &models.Faculty{Name: name}
	if err := s.facultyRepo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *facultyServiceImpl) EnsureDepartment(ctx context.Context, facultyID int64, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("department name cannot be empty")
	}

	d, err := s.departmentRepo.GetByName(ctx, facultyID, name)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	d = &models.Department{Name: name, FacultyID: facultyID}
	if err := s.departmentRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
