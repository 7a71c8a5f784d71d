package model

import "time"

// Role is the access level stored on a user and copied into access tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. Handlers never serialize this type directly; they use
// PublicUser so the password hash cannot leak.
//
// Fields:
//
//	ID           – UUID primary key.
//	Name         – display name.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – USER or ADMIN; new accounts always start as USER.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           string    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	CreatedAt    time.Time // users.created_at
}

// PublicUser is the projection of a User returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Public strips the credential fields from u.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// RefreshToken models an entry in the `refresh_tokens` table. The
// plain token is not stored; only its SHA‑256 hash. A row exists
// only while the token is usable: rotation, logout and purge all
// delete it.
//
// Fields:
//
//	TokenHash – SHA‑256 hex digest of the token value.
//	UserID    – owner of the token.
//	ExpiresAt – expiration timestamp of the token.
type RefreshToken struct {
	TokenHash string    // refresh_tokens.token_hash
	UserID    string    // refresh_tokens.user_id
	ExpiresAt time.Time // refresh_tokens.expires_at
}
