package models

import (
	"time"
)

// Role names understood by the admin panel.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the persisted account record. Password holds the bcrypt hash and is
// blanked by Redacted before the record leaves the credential store.
type User struct {
	ID        string    `json:"id" example:"7f1c2d7e-3c55-4f0b-9a55-1f2b8f0c1a10"`
	Name      string    `json:"name" example:"Somchai Prasert"`
	Email     string    `json:"email" example:"somchai@example.com"`
	Password  string    `json:"password,omitempty" example:""`
	Telephone string    `json:"telephone,omitempty" example:"+66 81 234 5678"`
	Role      string    `json:"role" example:"user"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2024-01-15T10:30:00Z"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Redacted returns a copy without the password hash.
func (u User) Redacted() User {
	u.Password = ""
	return u
}

// HasContact reports whether the user can act as a quotation sender.
func (u User) HasContact() bool {
	return u.Telephone != ""
}

// LoginAttempt is one immutable entry of the login journal.
type LoginAttempt struct {
	ID        string    `json:"id" example:"0b7f3a52-8d0e-4f43-a0d2-5d1e0f0c9b77"`
	Email     string    `json:"email" example:"somchai@example.com"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Success   bool      `json:"success" example:"true"`
	IPAddress string    `json:"ipAddress" example:"192.168.1.1"`
	UserAgent string    `json:"userAgent" example:"Mozilla/5.0"`
}

// LoginOrigin describes where an authentication attempt came from.
type LoginOrigin struct {
	IPAddress string
	UserAgent string
}

// CreateUserInput carries the admin form for a new account.
type CreateUserInput struct {
	Name      string `json:"name" validate:"required,min=2,max=120" binding:"required"`
	Email     string `json:"email" validate:"required,email" binding:"required"`
	Password  string `json:"password" validate:"required,min=6" binding:"required"`
	Telephone string `json:"telephone" validate:"omitempty,max=32"`
	Role      string `json:"role" validate:"omitempty,oneof=admin user"`
}

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Telephone *string `json:"telephone,omitempty" validate:"omitempty,max=32"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
}
