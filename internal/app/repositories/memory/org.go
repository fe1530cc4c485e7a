package memory

import (
	"context"
	"sort"

	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
)

// FacultyRepository is the in-memory faculty store
type FacultyRepository struct {
	db *DB
}

var _ repositories.IFacultyRepository = (*FacultyRepository)(nil)

// NewFacultyRepository creates a FacultyRepository over db
func NewFacultyRepository(db *DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// Create inserts a faculty with a unique name
func (r *FacultyRepository) Create(_ context.Context, faculty *models.Faculty) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, f := range r.db.faculties {
		if f.Name == faculty.Name {
			return apperrors.ErrFacultyAlreadyExists
		}
	}
	faculty.ID = r.db.id()
	r.db.faculties[faculty.ID] = &models.Faculty{ID: faculty.ID, Name: faculty.Name}
	return nil
}

// departmentsOf must be called with mu held
func (r *FacultyRepository) departmentsOf(facultyID int64) []*models.Department {
	departments := []*models.Department{}
	for _, d := range r.db.departments {
		if d.FacultyID == facultyID {
			departments = append(departments, &models.Department{ID: d.ID, Name: d.Name, FacultyID: d.FacultyID})
		}
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].Name < departments[j].Name })
	return departments
}

// GetByID retrieves a faculty with its departments
func (r *FacultyRepository) GetByID(_ context.Context, id int64) (*models.Faculty, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	f, ok := r.db.faculties[id]
	if !ok {
		return nil, apperrors.ErrFacultyNotFound
	}
	return &models.Faculty{ID: f.ID, Name: f.Name, Departments: r.departmentsOf(f.ID)}, nil
}

// GetByName retrieves a faculty by its exact name
func (r *FacultyRepository) GetByName(_ context.Context, name string) (*models.Faculty, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, f := range r.db.faculties {
		if f.Name == name {
			return &models.Faculty{ID: f.ID, Name: f.Name}, nil
		}
	}
	return nil, apperrors.ErrFacultyNotFound
}

// List returns all faculties with their departments, ordered by name
func (r *FacultyRepository) List(_ context.Context) ([]*models.Faculty, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	faculties := make([]*models.Faculty, 0, len(r.db.faculties))
	for _, f := range r.db.faculties {
		faculties = append(faculties, &models.Faculty{ID: f.ID, Name: f.Name, Departments: r.departmentsOf(f.ID)})
	}
	sort.Slice(faculties, func(i, j int) bool { return faculties[i].Name < faculties[j].Name })
	return faculties, nil
}

// DepartmentRepository is the in-memory department store
type DepartmentRepository struct {
	db *DB
}

var _ repositories.IDepartmentRepository = (*DepartmentRepository)(nil)

// NewDepartmentRepository creates a DepartmentRepository over db
func NewDepartmentRepository(db *DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create inserts a department, unique by name within its faculty
func (r *DepartmentRepository) Create(_ context.Context, department *models.Department) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.faculties[department.FacultyID]; !ok {
		return apperrors.ErrFacultyNotFound
	}
	for _, d := range r.db.departments {
		if d.FacultyID == department.FacultyID && d.Name == department.Name {
			return apperrors.ErrDepartmentAlreadyExists
		}
	}
	department.ID = r.db.id()
	r.db.departments[department.ID] = &models.Department{
		ID:        department.ID,
		Name:      department.Name,
		FacultyID: department.FacultyID,
	}
	return nil
}

// withFaculty must be called with mu held
func (r *DepartmentRepository) withFaculty(d *models.Department) *models.Department {
	cp := &models.Department{ID: d.ID, Name: d.Name, FacultyID: d.FacultyID}
	if f, ok := r.db.faculties[d.FacultyID]; ok {
		cp.Faculty = &models.Faculty{ID: f.ID, Name: f.Name}
	}
	return cp
}

// GetByID retrieves a department with its faculty
func (r *DepartmentRepository) GetByID(_ context.Context, id int64) (*models.Department, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	d, ok := r.db.departments[id]
	if !ok {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return r.withFaculty(d), nil
}

// GetByName retrieves a department by name within a faculty
func (r *DepartmentRepository) GetByName(_ context.Context, facultyID int64, name string) (*models.Department, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, d := range r.db.departments {
		if d.FacultyID == facultyID && d.Name == name {
			return r.withFaculty(d), nil
		}
	}
	return nil, apperrors.ErrDepartmentNotFound
}

// List returns departments ordered by name, optionally for one faculty
func (r *DepartmentRepository) List(_ context.Context, facultyID *int64) ([]*models.Department, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	departments := []*models.Department{}
	for _, d := range r.db.departments {
		if facultyID != nil && d.FacultyID != *facultyID {
			continue
		}
		departments = append(departments, r.withFaculty(d))
	}
	sort.Slice(departments, func(i, j int) bool {
		if departments[i].Name != departments[j].Name {
			return departments[i].Name < departments[j].Name
		}
		return departments[i].ID < departments[j].ID
	})
	return departments, nil
}
