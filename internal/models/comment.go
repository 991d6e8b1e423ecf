// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment represents a comment on a knowledge article. ParentID points at
// another comment when the comment is a threaded reply.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Content     string    `gorm:"not null" json:"content"`
	KnowledgeID uint      `gorm:"not null;index" json:"knowledge_id"`
	ParentID    *uint     `gorm:"index" json:"parent_id,omitempty"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}
