package user

import (
	"errors"

	"github.com/finanzcord/finanzcord/internal/domain/access"
)

// AdminID is the first registered user; it can never be deleted.
const AdminID int64 = 1

var (
	ErrNotFound           = access.ErrNotFound
	ErrEmailTaken         = errors.New("email already registered")
	ErrAdminProtected     = errors.New("admin user cannot be deleted")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           int64  `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	IsDeleted    bool   `json:"-"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=60"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateRequest is a partial update: nil fields are left untouched.
type UpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=60"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=1,max=72"`
}

func (r UpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil
}

// Changes is what the store applies; PasswordHash is already hashed.
type Changes struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

func (c Changes) IsEmpty() bool {
	return c.Name == nil && c.Email == nil && c.PasswordHash == nil
}
