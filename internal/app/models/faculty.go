package models

// Faculty represents a faculty in the university
type Faculty struct {
	ID          int64         `json:"id" example:"1"`
	Name        string        `json:"name" example:"Faculty of Engineering, Design & Technology"`
	Departments []*Department `json:"departments,omitempty"`
}
