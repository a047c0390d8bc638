package domain

import "time"

// Roles a user can hold
const (
	RoleAdmin = "admin" // Manages accounts and the plant catalog
	RoleUser  = "user"  // Owns gardens and plants
)

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                        // Primary key
	Name         string    `gorm:"not null" json:"name"`                        // Display name
	CPF          string    `gorm:"size:11;uniqueIndex;not null" json:"cpf"`     // Digits only, also the login
	PasswordHash string    `gorm:"not null" json:"-"`                           // Hashed password
	Role         string    `gorm:"size:16;default:user;index" json:"role"`      // Role: user or admin
	Email        *string   `gorm:"size:191;uniqueIndex" json:"email,omitempty"` // Regular users only
	Address      string    `json:"address,omitempty"`                           // Regular users only
	Registration string    `json:"registration,omitempty"`                      // Admin registration number
	CreatedAt    time.Time `json:"created_at"`                                  // Creation time
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
