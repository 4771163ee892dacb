package model

import "time"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthUser is the sanitized shape returned to clients. The password hash
// never crosses the HTTP boundary.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) Sanitized() AuthUser {
	return AuthUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// AccessClaims are the decoded claims of a user access token.
type AccessClaims struct {
	UserID  string `json:"sub"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	TokenID string `json:"jti"`
}

// AdminClaims are the decoded claims of an admin session token. This is a
// separate trust domain from the user access token and is verified with a
// different secret.
type AdminClaims struct {
	Email string `json:"sub"`
	Role  string `json:"role"`
}

// RefreshToken is the persisted half of a refresh credential. The raw
// credential handed to the client is "{id}.{secret}"; only the bcrypt hash
// of the secret is stored.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	User             AuthUser
}
