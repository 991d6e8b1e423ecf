// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Technology is a catalog entry with an uploaded icon. Icon holds the public
// path (under /images/) of the file persisted on local disk.
type Technology struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"unique;not null" json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the singular table name used by the existing schema.
func (Technology) TableName() string { return "technology" }
