package models

import "time"

// User is an account able to log in. PasswordHash is a bcrypt hash and is
// never rendered.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:80;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	IsAdmin      bool      `gorm:"not null"`
	CreadoEn     time.Time `gorm:"autoCreateTime;not null"`
}

func (User) TableName() string { return "usuarios" }

// UserUpdate patches a user. An empty Password leaves the hash untouched.
type UserUpdate struct {
	ID       uint
	Username *string
	Password *string
	IsAdmin  *bool
}
