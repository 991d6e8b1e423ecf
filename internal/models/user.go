// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role values stored on a user row and carried in token claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. The password hash is never serialized.
type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Username     string      `gorm:"unique;not null" json:"username"`
	Email        string      `gorm:"unique;not null" json:"email"`
	PasswordHash string      `gorm:"column:password_hash;not null" json:"-"`
	Role         string      `gorm:"not null;default:user" json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Knowledge    []Knowledge `gorm:"foreignKey:AuthorID" json:"knowledge,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
