package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent      RoleType = "student"
	RoleSupervisor   RoleType = "supervisor"
	RoleAdmin        RoleType = "admin"
	RoleFacultyAdmin RoleType = "faculty_admin"
)

// AllRoles lists every role in the order they are presented to administrators
var AllRoles = []RoleType{RoleStudent, RoleSupervisor, RoleAdmin, RoleFacultyAdmin}

// IsValid reports whether r is one of the known roles
func (r RoleType) IsValid() bool {
	switch r {
	case RoleStudent, RoleSupervisor, RoleAdmin, RoleFacultyAdmin:
		return true
	}
	return false
}

// ProjectStatus is the moderation state of a project
type ProjectStatus string

const (
	StatusPending  ProjectStatus = "pending"
	StatusApproved ProjectStatus = "approved"
	StatusRejected ProjectStatus = "rejected"
)

// IsValid reports whether s is one of the moderation states
func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Gender values accepted on a profile
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// IsValid reports whether g is an accepted gender value
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
