// Package auth handles user accounts and stateless identity for YouSong.
// It provides registration, login, and the bearer-token resolution middleware
// every other plugin uses to discover who is making a request.
//
// Identity is stateless: a signed token carries the user id and no session
// state is kept server-side. Logout is therefore a client-side operation
// (discard the token); the endpoint exists only for API symmetry.
package auth

import (
	"time"
)

// User represents a registered YouSong user. This is the domain model used
// throughout the application. Database scanning and JSON marshaling use this
// struct directly.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	CreatedAt    time.Time `json:"created_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the data submitted to POST /api/users.
type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginRequest holds the credentials submitted to POST /login.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the validated input for creating a new user.
type RegisterInput struct {
	Username string
	Password string
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Username string
	Password string
}

// --- Response DTOs ---

// UserResponse is the public representation of a user. The password hash
// never leaves the service layer.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse is returned by a successful POST /login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// toResponse converts a domain User to its public representation.
func toResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
