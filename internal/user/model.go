package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailAlreadyUsed   = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidRole        = errors.New("invalid role")
)

// Role is the club role of a user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCoach      Role = "coach"
	RoleBarManager Role = "bar_manager"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCoach || r == RoleBarManager
}

// User represents a staff member who can sign in to the planner.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// IsAdmin reports whether the user may modify any booking.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Name returns the display name, falling back to the email.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Email
}
