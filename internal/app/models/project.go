package models

import "time"

// Project is a student submission moving through moderation
type Project struct {
	ID           int64         `json:"id" example:"1"`
	Title        string        `json:"title" example:"Smart irrigation controller"`
	Description  string        `json:"description"`
	Category     string        `json:"category" example:"IoT"`
	Technologies string        `json:"technologies" example:"Go, React, MQTT"`
	GithubLink   *string       `json:"githubLink,omitempty"`
	DocumentURL  *string       `json:"documentUrl,omitempty"`
	Status       ProjectStatus `json:"status" example:"pending"`
	StudentID    int64         `json:"studentId"`
	SupervisorID *int64        `json:"supervisorId,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`

	Student    *User `json:"student,omitempty"`
	Supervisor *User `json:"supervisor,omitempty"`
}

// Comment is an immutable remark left on a project
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	ProjectID int64     `json:"projectId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"user,omitempty"`
}

// ProjectView records one read of a project
type ProjectView struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectId"`
	IPAddress *string   `json:"ipAddress,omitempty"`
	ViewedAt  time.Time `json:"viewedAt"`
}
