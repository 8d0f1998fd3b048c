package models

import "time"

// User is a registered account. Created on register, immutable afterwards.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"` // bcrypt, never sent to clients
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the part of a User that is safe to return to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public strips the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
