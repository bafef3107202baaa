package users

import (
	"time"
)

// CreateUserRequest represents a user registration request.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserReply represents a stored user. The password hash never crosses
// the service boundary.
type UserReply struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest represents a credential check request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginReply represents an issued bearer token.
type LoginReply struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CurrentUserRequest resolves a bearer token to its user.
type CurrentUserRequest struct {
	Token string `json:"token"`
}

// GetUserRequest represents a lookup by ID.
type GetUserRequest struct {
	ID uint `json:"id"`
}

// ListUsersRequest represents a paginated listing request.
type ListUsersRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListUsersReply represents a page of users in insertion order.
type ListUsersReply struct {
	Users []UserReply `json:"users"`
}

// UpdateUserRequest represents a partial update. Nil fields are left
// unchanged on the stored row.
type UpdateUserRequest struct {
	ID       uint    `json:"id"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// DeleteUserRequest represents a deletion by ID.
type DeleteUserRequest struct {
	ID uint `json:"id"`
}

// DeleteUserReply acknowledges a deletion.
type DeleteUserReply struct {
	Deleted bool `json:"deleted"`
}
