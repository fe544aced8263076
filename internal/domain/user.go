package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Email        string    `json:"email" gorm:"size:200;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	FirstName    string    `json:"firstName" gorm:"size:120"`
	LastName     string    `json:"lastName" gorm:"size:120"`
	Phone        string    `json:"phone" gorm:"size:40"`
	Role         Role      `json:"role" gorm:"size:16;default:'CLIENT'"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NormalizeEmail lowercases and trims, so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfilePatch updates the editable profile fields.
type ProfilePatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

func (pp ProfilePatch) Apply(u User) User {
	if pp.FirstName != nil {
		u.FirstName = strings.TrimSpace(*pp.FirstName)
	}
	if pp.LastName != nil {
		u.LastName = strings.TrimSpace(*pp.LastName)
	}
	if pp.Phone != nil {
		u.Phone = strings.TrimSpace(*pp.Phone)
	}
	return u
}
