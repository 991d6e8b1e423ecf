// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/lib/pq"
)

// Moderation states for a knowledge article. A missing status is treated as
// StatusPending everywhere.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// ValidStatus reports whether s is one of the moderation states.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Knowledge represents a user-submitted article subject to moderation.
// Technology keeps the denormalized name alongside the foreign key so search
// can filter on it without a join.
type Knowledge struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Technology    string         `gorm:"not null;index" json:"technology"`
	TechnologyID  *uint          `gorm:"index" json:"technology_id,omitempty"`
	Level         string         `json:"level"`
	Title         string         `gorm:"not null" json:"title"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
	Status        string         `gorm:"default:Pending" json:"status"`
	AuthorID      uint           `gorm:"not null;index" json:"author_id"`
	LikesCount    int            `gorm:"default:0" json:"likes_count"`
	DislikesCount int            `gorm:"default:0" json:"dislikes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int       `gorm:"->" json:"comments_count"`
	Comments      []Comment `gorm:"foreignKey:KnowledgeID" json:"comments,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName keeps the singular table name used by the existing schema.
func (Knowledge) TableName() string { return "knowledge" }
