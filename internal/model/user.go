package model

import "time"

// Role names for the users.role column. Clients buy units; builders own the
// builder profile behind one or more listings.
const (
	RoleClient  = "CLIENT"
	RoleBuilder = "BUILDER"
)

// User represents an application user record as stored in the `users`
// table. Name is the registered full name; the client-side signature gate
// compares the typed name against it case-insensitively.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – registered full name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – CLIENT or BUILDER.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
