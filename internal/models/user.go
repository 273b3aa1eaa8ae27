package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk" json:"id"`
	Email     string    `bun:"email,unique,notnull" json:"email"`
	FullName  string    `bun:"full_name,notnull" json:"fullName"`
	Role      Role      `bun:"role,notnull" json:"role"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Actor is the authenticated caller of an operation, resolved by the
// auth middleware before any service method runs.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
