package auth_models

import (
	"time"
)

// User represents a dashboard operator account
type User struct {
	UserID         string     `json:"user_id" bson:"user_id" db:"user_id"`
	Name           string     `json:"name" bson:"name" db:"name"`
	Username       string     `json:"username" bson:"username" db:"username"`
	Email          string     `json:"email" bson:"email" db:"email"`
	Password       string     `json:"-" bson:"password" db:"password"` // bcrypt hash, never exposed in JSON
	Role           string     `json:"role" bson:"role" db:"role"`
	Active         bool       `json:"active" bson:"active" db:"active"`
	LastConnection *time.Time `json:"last_connection,omitempty" bson:"last_connection,omitempty" db:"last_connection"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// NewUser creates a new User instance
func NewUser(name, username, email, password, role string) *User {
	now := time.Now()
	return &User{
		Name:      name,
		Username:  username,
		Email:     email,
		Password:  password, // Note: This should be hashed before saving
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PublicUser is the login/profile projection without credentials.
type PublicUser struct {
	UserID         string     `json:"id"`
	Username       string     `json:"username"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	LastConnection *time.Time `json:"last_connection,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Public returns the credential-free projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		UserID:         u.UserID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		LastConnection: u.LastConnection,
		CreatedAt:      u.CreatedAt,
	}
}
