// Package auth holds the access policy: one role table deciding which
// subject may perform which action on which target, and with what row scope.
package auth

import (
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/pkg/apperrors"
)

// Action names an operation checked by the policy
type Action string

const (
	ActionUserCreate     Action = "user:create"
	ActionUserList       Action = "user:list"
	ActionUserRead       Action = "user:read"
	ActionUserUpdate     Action = "user:update"
	ActionUserDeactivate Action = "user:deactivate"
	ActionUserReactivate Action = "user:reactivate"

	ActionProjectCreate     Action = "project:create"
	ActionProjectUpdate     Action = "project:update"
	ActionProjectReview     Action = "project:review"
	ActionProjectDelete     Action = "project:delete"
	ActionProjectListReview Action = "project:list-review"
	ActionProjectListOwn    Action = "project:list-own"

	ActionCommentCreate Action = "comment:create"
	ActionDashboardView Action = "dashboard:view"
)

// Denial reasons
const (
	ReasonRole       = "you do not have permission to perform this action"
	ReasonOwner      = "you can only modify your own projects"
	ReasonFaculty    = "resource is outside your faculty"
	ReasonDepartment = "resource is outside your department"
	ReasonProtected  = "you cannot modify admin or faculty admin accounts"
	ReasonGrant      = "you are not allowed to assign this role"
	ReasonNoFaculty  = "faculty is required"
	ReasonNoDept     = "department is required"
)

// scopeKind is the row restriction a role has for an action
type scopeKind int

const (
	scopeAny        scopeKind = iota // any authenticated subject, no target check
	scopeAll                         // every row
	scopeFaculty                     // rows within the subject's faculty
	scopeDepartment                  // rows within the subject's department
	scopeOwn                         // rows owned by the subject
)

type rolePolicy struct {
	grantable []models.RoleType
	// protected roles cannot be the target of user mutations
	protected []models.RoleType
	actions   map[Action]scopeKind
}

var userAdmin = map[Action]scopeKind{
	ActionUserCreate:     scopeAll,
	ActionUserList:       scopeAll,
	ActionUserRead:       scopeAll,
	ActionUserUpdate:     scopeAll,
	ActionUserDeactivate: scopeAll,
	ActionUserReactivate: scopeAll,
}

var policies = map[models.RoleType]rolePolicy{
	models.RoleAdmin: {
		grantable: models.AllRoles,
		actions: merge(userAdmin, map[Action]scopeKind{
			ActionProjectReview:     scopeAll,
			ActionProjectDelete:     scopeAll,
			ActionProjectListReview: scopeFaculty,
			ActionProjectListOwn:    scopeOwn,
			ActionCommentCreate:     scopeAny,
			ActionDashboardView:     scopeAny,
		}),
	},
	models.RoleFacultyAdmin: {
		grantable: []models.RoleType{models.RoleStudent, models.RoleSupervisor},
		protected: []models.RoleType{models.RoleAdmin, models.RoleFacultyAdmin},
		actions: map[Action]scopeKind{
			ActionUserCreate:        scopeFaculty,
			ActionUserList:          scopeFaculty,
			ActionUserRead:          scopeFaculty,
			ActionUserUpdate:        scopeFaculty,
			ActionUserDeactivate:    scopeFaculty,
			ActionUserReactivate:    scopeFaculty,
			ActionProjectReview:     scopeFaculty,
			ActionProjectDelete:     scopeFaculty,
			ActionProjectListReview: scopeFaculty,
			ActionCommentCreate:     scopeAny,
			ActionDashboardView:     scopeAny,
		},
	},
	models.RoleSupervisor: {
		actions: map[Action]scopeKind{
			ActionProjectReview:     scopeDepartment,
			ActionProjectListReview: scopeDepartment,
			ActionCommentCreate:     scopeAny,
			ActionDashboardView:     scopeAny,
		},
	},
	models.RoleStudent: {
		actions: map[Action]scopeKind{
			ActionProjectCreate:  scopeAny,
			ActionProjectUpdate:  scopeOwn,
			ActionProjectDelete:  scopeOwn,
			ActionProjectListOwn: scopeOwn,
			ActionCommentCreate:  scopeAny,
			ActionDashboardView:  scopeAny,
		},
	},
}

func merge(maps ...map[Action]scopeKind) map[Action]scopeKind {
	out := map[Action]scopeKind{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Subject is the authenticated caller with its org membership
type Subject struct {
	ID           int64
	Name         string
	Role         models.RoleType
	FacultyID    *int64
	DepartmentID *int64
}

// SubjectOf builds a Subject from a stored user
func SubjectOf(u *models.User) Subject {
	return Subject{ID: u.ID, Name: u.Name, Role: u.Role, FacultyID: u.FacultyID, DepartmentID: u.DepartmentID}
}

// Target describes what an action applies to. For projects the org fields
// are those of the owning student. The zero Target means a listing.
type Target struct {
	OwnerID      int64
	Role         models.RoleType // current role of a target account
	GrantRole    models.RoleType // role being assigned, if any
	FacultyID    *int64
	DepartmentID *int64
}

// ProjectTarget builds the target of a project action from its owning student
func ProjectTarget(p *models.Project) Target {
	t := Target{OwnerID: p.StudentID}
	if p.Student != nil {
		t.FacultyID = p.Student.FacultyID
		t.DepartmentID = p.Student.DepartmentID
	}
	return t
}

// UserTarget builds the target of a user action
func UserTarget(u *models.User) Target {
	return Target{OwnerID: u.ID, Role: u.Role, FacultyID: u.FacultyID, DepartmentID: u.DepartmentID}
}

// Scope is the row filter a listing must apply. All means no filter.
type Scope struct {
	All          bool
	FacultyID    *int64
	DepartmentID *int64
	OwnerID      *int64
}

// Decision is the outcome of Authorize
type Decision struct {
	Allowed bool
	Reason  string
	Scope   Scope

	// incomplete marks an account creation by a subject missing an org unit
	incomplete bool
}

// Err returns nil when allowed, otherwise the error matching the denial
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.incomplete {
		return apperrors.NewValidationError(d.Reason)
	}
	return apperrors.NewForbiddenError(d.Reason)
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// unassigned denies a subject that has no org unit. Only account creation
// treats this as bad input; every other action is out of scope.
func unassigned(action Action, createReason, scopeReason string) Decision {
	if action == ActionUserCreate {
		return Decision{Reason: createReason, incomplete: true}
	}
	return deny(scopeReason)
}

// Authorize decides whether subject may perform action on target. It does
// no I/O; callers load the target and subject first.
func Authorize(subject Subject, action Action, target Target) Decision {
	policy, ok := policies[subject.Role]
	if !ok {
		return deny(ReasonRole)
	}
	kind, ok := policy.actions[action]
	if !ok {
		return deny(ReasonRole)
	}

	switch action {
	case ActionUserCreate:
		if !roleIn(target.GrantRole, policy.grantable) {
			return deny(ReasonGrant)
		}
	case ActionUserUpdate, ActionUserDeactivate, ActionUserReactivate:
		if roleIn(target.Role, policy.protected) {
			return deny(ReasonProtected)
		}
		if target.GrantRole != "" && !roleIn(target.GrantRole, policy.grantable) {
			return deny(ReasonGrant)
		}
	}

	var scope Scope
	switch kind {
	case scopeAny:
		return Decision{Allowed: true, Scope: Scope{All: true}}

	case scopeAll:
		scope = Scope{All: true}

	case scopeFaculty:
		if subject.FacultyID == nil {
			// an admin outside any faculty keeps its global reach
			if subject.Role == models.RoleAdmin {
				return Decision{Allowed: true, Scope: Scope{All: true}}
			}
			return unassigned(action, ReasonNoFaculty, ReasonFaculty)
		}
		if !isListing(target) && !sameUnit(subject.FacultyID, target.FacultyID) {
			return deny(ReasonFaculty)
		}
		scope = Scope{FacultyID: subject.FacultyID}

	case scopeDepartment:
		if subject.DepartmentID == nil {
			return unassigned(action, ReasonNoDept, ReasonDepartment)
		}
		if !isListing(target) && !sameUnit(subject.DepartmentID, target.DepartmentID) {
			return deny(ReasonDepartment)
		}
		scope = Scope{DepartmentID: subject.DepartmentID}

	case scopeOwn:
		if !isListing(target) && target.OwnerID != subject.ID {
			return deny(ReasonOwner)
		}
		id := subject.ID
		scope = Scope{OwnerID: &id}
	}

	return Decision{Allowed: true, Scope: scope}
}

// AllowedRoles returns the roles creator may assign
func AllowedRoles(creator models.RoleType) []models.RoleType {
	return policies[creator].grantable
}

// CanGrant reports whether creator may assign role
func CanGrant(creator, role models.RoleType) bool {
	return roleIn(role, policies[creator].grantable)
}

// CoerceRole returns requested when creator may assign it, otherwise student
func CoerceRole(creator, requested models.RoleType) models.RoleType {
	if CanGrant(creator, requested) {
		return requested
	}
	return models.RoleStudent
}

// ForcesOwnFaculty reports whether accounts created by role are pinned to the creator's faculty
func ForcesOwnFaculty(role models.RoleType) bool {
	return policies[role].actions[ActionUserCreate] == scopeFaculty
}

func isListing(t Target) bool {
	return t == Target{}
}

func sameUnit(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

func roleIn(role models.RoleType, roles []models.RoleType) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
