package models

// Department represents a department in a faculty
type Department struct {
	ID        int64    `json:"id" example:"1"`
	Name      string   `json:"name" example:"Department of Computer Engineering"`
	FacultyID int64    `json:"facultyId" example:"2"`
	Faculty   *Faculty `json:"faculty,omitempty"`
}
