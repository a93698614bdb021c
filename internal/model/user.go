package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a regular account
	RoleUser UserRole = "user"
	// RoleModerator can manage content created by others
	RoleModerator UserRole = "moderator"
	// RoleAdmin has full access
	RoleAdmin UserRole = "admin"
)

// UserStatus is the account lifecycle status
type UserStatus = string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the account model. The password hash is never serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Name          string     `bun:"name" json:"name,omitempty"`
	ProfilePhoto  string     `bun:"profile_photo" json:"profile_photo,omitempty"`
	Role          UserRole   `bun:"user_role,notnull,default:'user'" json:"user_role,omitempty"`
	Status        UserStatus `bun:"status,notnull,default:'pending'" json:"status,omitempty"`
	IsVerified    bool       `bun:"is_verified" json:"is_verified"`
	LastLoginAt   *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// NormalizeEmail lowercases and trims an email address. Email uniqueness
// is case-insensitive, so every lookup and insert goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Summary returns the fields safe to include in API responses.
func (u *User) Summary() map[string]any {
	return map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"is_verified": u.IsVerified,
	}
}
