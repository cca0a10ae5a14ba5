// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered account on the board.
//
// Users are created by registration and never updated or deleted through the
// API; the repository Delete exists so foreign-key cascades can be exercised.
// PasswordHash holds a bcrypt digest and is never serialized.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Posts        []Post    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
	Comments     []Comment `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}
