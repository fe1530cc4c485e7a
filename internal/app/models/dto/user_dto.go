package dto

import (
	"time"

	"github.com/ucu/innovators-hub/internal/app/models"
)

// UserSummary is the compact user shape returned by auth and admin endpoints
type UserSummary struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	AccessNumber *string `json:"accessNumber,omitempty"`
	Active       bool    `json:"active"`
	FacultyID    *int64  `json:"facultyId,omitempty"`
	DepartmentID *int64  `json:"departmentId,omitempty"`
}

// OrgRef names a faculty or department
type OrgRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserResponse is the full user shape, without credentials
type UserResponse struct {
	UserSummary
	Faculty            *OrgRef   `json:"faculty,omitempty"`
	Department         *OrgRef   `json:"department,omitempty"`
	ProfilePhotoURL    *string   `json:"profilePhotoUrl,omitempty"`
	RegistrationNumber *string   `json:"registrationNumber,omitempty"`
	YearOfEntry        *int      `json:"yearOfEntry,omitempty"`
	Gender             *string   `json:"gender,omitempty"`
	Nationality        *string   `json:"nationality,omitempty"`
	PhoneNumber        *string   `json:"phoneNumber,omitempty"`
	OtherNames         *string   `json:"otherNames,omitempty"`
	Hobbies            *string   `json:"hobbies,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// UserListQuery holds the user listing filters
type UserListQuery struct {
	Role            string `form:"role"`
	FacultyID       *int64 `form:"facultyId"`
	DepartmentID    *int64 `form:"departmentId"`
	IncludeInactive bool   `form:"includeInactive"`
}

// CreateUserRequest creates an account with an explicit password
type CreateUserRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Role         string `json:"role"`
	FacultyID    *int64 `json:"facultyId"`
	DepartmentID *int64 `json:"departmentId"`
}

// UpdateUserRequest changes an account. Absent fields keep their value.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Role         *string `json:"role"`
	FacultyID    *int64  `json:"facultyId"`
	DepartmentID *int64  `json:"departmentId"`
	Password     *string `json:"password" binding:"omitempty,min=6"`
}

// UpdateProfileRequest changes the caller's own profile. Absent fields keep
// their value; an empty string clears the field.
type UpdateProfileRequest struct {
	Name               *string `json:"name"`
	PhoneNumber        *string `json:"phoneNumber"`
	OtherNames         *string `json:"otherNames"`
	Nationality        *string `json:"nationality"`
	Gender             *string `json:"gender"`
	Hobbies            *string `json:"hobbies"`
	RegistrationNumber *string `json:"registrationNumber"`
	YearOfEntry        *int    `json:"yearOfEntry"`
}

// ProfilePhotoResponse returns the stored photo reference
type ProfilePhotoResponse struct {
	ProfilePhotoURL string `json:"profilePhotoUrl"`
}

// NewUserSummary converts a user to its summary shape
func NewUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		AccessNumber: u.AccessNumber,
		Active:       u.IsActive,
		FacultyID:    u.FacultyID,
		DepartmentID: u.DepartmentID,
	}
}

// NewUserResponse converts a user to the full response shape
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	resp := &UserResponse{
		UserSummary:        *NewUserSummary(u),
		ProfilePhotoURL:    u.ProfilePhotoURL,
		RegistrationNumber: u.RegistrationNumber,
		YearOfEntry:        u.YearOfEntry,
		Nationality:        u.Nationality,
		PhoneNumber:        u.PhoneNumber,
		OtherNames:         u.OtherNames,
		Hobbies:            u.Hobbies,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
	if u.Gender != nil {
		g := string(*u.Gender)
		resp.Gender = &g
	}
	if u.Faculty != nil {
		resp.Faculty = &OrgRef{ID: u.Faculty.ID, Name: u.Faculty.Name}
	}
	if u.Department != nil {
		resp.Department = &OrgRef{ID: u.Department.ID, Name: u.Department.Name}
	}
	return resp
}

// NewUserResponses converts a list of users
func NewUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
