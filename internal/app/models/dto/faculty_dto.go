package dto

import "github.com/ucu/innovators-hub/internal/app/models"

// DepartmentResponse represents a department
type DepartmentResponse struct {
	ID        int64  `json:"id" example:"1"`
	Name      string `json:"name" example:"Computing"`
	FacultyID int64  `json:"facultyId" example:"1"`
}

// FacultyResponse represents a faculty with its departments
type FacultyResponse struct {
	ID          int64                 `json:"id" example:"1"`
	Name        string                `json:"name" example:"Engineering, Design & Technology"`
	Departments []*DepartmentResponse `json:"departments"`
}

// NewDepartmentResponse converts a department
func NewDepartmentResponse(d *models.Department) *DepartmentResponse {
	return &DepartmentResponse{ID: d.ID, Name: d.Name, FacultyID: d.FacultyID}
}

// NewDepartmentResponses converts a list of departments
func NewDepartmentResponses(departments []*models.Department) []*DepartmentResponse {
	out := make([]*DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		out = append(out, NewDepartmentResponse(d))
	}
	return out
}

// NewFacultyResponse converts a faculty with its departments
func NewFacultyResponse(f *models.Faculty) *FacultyResponse {
	return &FacultyResponse{ID: f.ID, Name: f.Name, Departments: NewDepartmentResponses(f.Departments)}
}

// NewFacultyResponses converts a list of faculties
func NewFacultyResponses(faculties []*models.Faculty) []*FacultyResponse {
	out := make([]*FacultyResponse, 0, len(faculties))
	for _, f := range faculties {
		out = append(out, NewFacultyResponse(f))
	}
	return out
}
