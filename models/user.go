package models

import "time"

// User is an account that owns files. Passwords are stored as bcrypt hashes only.
// Accounts are provisioned out of band (boot seeding, ops tooling); the API never
// creates or mutates them.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
