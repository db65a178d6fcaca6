package serrors

import "net/http"

// Input validation.
const (
	RequiredName     = "REQUIRED_NAME"
	RequiredEmail    = "REQUIRED_EMAIL"
	RequiredPassword = "REQUIRED_PASSWORD"
	RequiredSlug     = "REQUIRED_SLUG"
	InvalidEmail     = "INVALID_EMAIL"
	InvalidSlug      = "INVALID_SLUG"
	PasswordTooShort = "PASSWORD_TOO_SHORT"
	PasswordWeak     = "PASSWORD_WEAK"
	InvalidRole      = "INVALID_ROLE"
	InvalidStatus    = "INVALID_STATUS"
	InvalidID        = "INVALID_ID"
	InvalidBody      = "INVALID_BODY"
	MethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// Uniqueness conflicts.
const (
	EmailExists      = "EMAIL_EXISTS"
	SlugExists       = "SLUG_EXISTS"
	AlreadyMember    = "ALREADY_MEMBER"
	InvitationExists = "INVITATION_EXISTS"
)

// Referential and structural.
const (
	ParentNotFound       = "PARENT_NOT_FOUND"
	CircularReference    = "CIRCULAR_REFERENCE"
	CircularHierarchy    = "CIRCULAR_HIERARCHY"
	MemberNotFound       = "MEMBER_NOT_FOUND"
	NotFound             = "NOT_FOUND"
	ManagerNotFound      = "MANAGER_NOT_FOUND"
	DepartmentNotFound   = "DEPARTMENT_NOT_FOUND"
	UserNotFound         = "USER_NOT_FOUND"
	InvitationNotFound   = "INVITATION_NOT_FOUND"
	InvitationExpired    = "INVITATION_EXPIRED"
	InvitationNotPending = "INVITATION_NOT_PENDING"
)

// Invariant protection.
const (
	HasSubordinates       = "HAS_SUBORDINATES"
	HasUsers              = "HAS_USERS"
	HasChildren           = "HAS_CHILDREN"
	CannotRemoveOwner     = "CANNOT_REMOVE_OWNER"
	CannotChangeOwnerRole = "CANNOT_CHANGE_OWNER_ROLE"
)

// Authorization.
const (
	InsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	Unauthenticated         = "UNAUTHENTICATED"
)

// Infrastructure.
const (
	CreateError = "CREATE_ERROR"
	UpdateError = "UPDATE_ERROR"
	DeleteError = "DELETE_ERROR"
	FetchError  = "FETCH_ERROR"
)

var statuses = map[string]int{
	RequiredName:     http.StatusBadRequest,
	RequiredEmail:    http.StatusBadRequest,
	RequiredPassword: http.StatusBadRequest,
	RequiredSlug:     http.StatusBadRequest,
	InvalidEmail:     http.StatusBadRequest,
	InvalidSlug:      http.StatusBadRequest,
	PasswordTooShort: http.StatusBadRequest,
	PasswordWeak:     http.StatusBadRequest,
	InvalidRole:      http.StatusBadRequest,
	InvalidStatus:    http.StatusBadRequest,
	InvalidID:        http.StatusBadRequest,
	InvalidBody:      http.StatusBadRequest,
	MethodNotAllowed: http.StatusMethodNotAllowed,

	EmailExists:      http.StatusConflict,
	SlugExists:       http.StatusConflict,
	AlreadyMember:    http.StatusConflict,
	InvitationExists: http.StatusConflict,

	ParentNotFound:       http.StatusUnprocessableEntity,
	CircularReference:    http.StatusUnprocessableEntity,
	CircularHierarchy:    http.StatusUnprocessableEntity,
	ManagerNotFound:      http.StatusUnprocessableEntity,
	DepartmentNotFound:   http.StatusUnprocessableEntity,
	MemberNotFound:       http.StatusNotFound,
	NotFound:             http.StatusNotFound,
	UserNotFound:         http.StatusNotFound,
	InvitationNotFound:   http.StatusNotFound,
	InvitationExpired:    http.StatusGone,
	InvitationNotPending: http.StatusConflict,

	HasSubordinates:       http.StatusConflict,
	HasUsers:              http.StatusConflict,
	HasChildren:           http.StatusConflict,
	CannotRemoveOwner:     http.StatusConflict,
	CannotChangeOwnerRole: http.StatusConflict,

	InsufficientPermissions: http.StatusForbidden,
	Unauthenticated:         http.StatusUnauthorized,

	CreateError: http.StatusInternalServerError,
	UpdateError: http.StatusInternalServerError,
	DeleteError: http.StatusInternalServerError,
	FetchError:  http.StatusInternalServerError,
}
