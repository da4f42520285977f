package models

import "time"

// DefaultRole is the role given to users created without one.
const DefaultRole = "member"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser is the input for creating a user; storage assigns the rest.
type NewUser struct {
	Username string
	Role     string
}
