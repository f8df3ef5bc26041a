package models

import (
	"time"
)

// Role represents the access level of a user account
type Role string

const (
	// RoleUser is the default role for registered accounts
	RoleUser Role = "user"
	// RoleStaff can manage carriers and settlements
	RoleStaff Role = "staff"
	// RoleAdmin can mutate any record regardless of ownership
	RoleAdmin Role = "admin"
)

// Elevated reports whether the role may manage carriers and settlements
func (r Role) Elevated() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User model represents an account that authors records
type User struct {
	Model
	FirstName            string     `json:"first_name" gorm:"Column:first_name"`
	LastName             string     `json:"last_name" gorm:"Column:last_name"`
	Email                string     `json:"email" gorm:"uniqueIndex;Column:email"`
	Role                 Role       `json:"role" gorm:"Column:role;default:'user'"`
	Password             string     `json:"-" gorm:"Column:password"`
	ResetPasswordToken   string     `json:"-" gorm:"Column:reset_password_token"`
	ResetPasswordExpires *time.Time `json:"-" gorm:"Column:reset_password_expires"`
}
