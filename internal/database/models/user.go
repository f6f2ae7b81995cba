package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account. The email is the login identity.
type User struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Password    string    `gorm:"size:255;not null" json:"-"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	IsStaff     bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// SetPassword stores the bcrypt hash of raw.
func (u *User) SetPassword(raw string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether raw matches the stored hash.
func (u *User) CheckPassword(raw string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}

// NormalizeEmail lower-cases the domain part of an address and leaves the local part alone.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
