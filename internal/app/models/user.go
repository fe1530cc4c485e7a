package models

import (
	"time"
)

// DefaultNationality is stored for accounts that never set one
const DefaultNationality = "Ugandan"

// User defines the user model based on the 'users' table
type User struct {
	ID                 int64      `json:"id" db:"id" example:"1"`
	Name               string     `json:"name" db:"name" example:"John Doe"`
	Email              string     `json:"email" db:"email" example:"student@ucu.ac.ug"`
	Password           string     `json:"-" db:"password"`
	Role               RoleType   `json:"role" db:"role" example:"student"`
	FacultyID          *int64     `json:"facultyId,omitempty" db:"faculty_id" example:"2"`
	DepartmentID       *int64     `json:"departmentId,omitempty" db:"department_id" example:"7"`
	IsActive           bool       `json:"isActive" db:"is_active" example:"true"`
	AccessNumber       *string    `json:"accessNumber,omitempty" db:"access_number" example:"B123456"`
	ResetTokenHash     *string    `json:"-" db:"reset_password_token"`
	ResetTokenExpires  *time.Time `json:"-" db:"reset_password_expires"`
	ProfilePhotoURL    *string    `json:"profilePhotoUrl,omitempty" db:"profile_photo_url"`
	RegistrationNumber *string    `json:"registrationNumber,omitempty" db:"registration_number"`
	YearOfEntry        *int       `json:"yearOfEntry,omitempty" db:"year_of_entry"`
	Gender             *Gender    `json:"gender,omitempty" db:"gender"`
	Nationality        *string    `json:"nationality,omitempty" db:"nationality"`
	PhoneNumber        *string    `json:"phoneNumber,omitempty" db:"phone_number"`
	OtherNames         *string    `json:"otherNames,omitempty" db:"other_names"`
	Hobbies            *string    `json:"hobbies,omitempty" db:"hobbies"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`

	// Relations, filled by joins
	Faculty    *Faculty    `json:"faculty,omitempty" db:"-"`
	Department *Department `json:"department,omitempty" db:"-"`
}

// InFaculty reports whether the user belongs to the given faculty
func (u *User) InFaculty(facultyID *int64) bool {
	return u.FacultyID != nil && facultyID != nil && *u.FacultyID == *facultyID
}

// InDepartment reports whether the user belongs to the given department
func (u *User) InDepartment(departmentID *int64) bool {
	return u.DepartmentID != nil && departmentID != nil && *u.DepartmentID == *departmentID
}
