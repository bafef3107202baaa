package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/user-crud-demo/modules/users"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// UsersPort defines the user management operations the HTTP layer
// needs from the users module.
type UsersPort interface {
	CreateUser(ctx context.Context, username, email, password string) (*users.UserReply, error)
	Login(ctx context.Context, email, password string) (*users.LoginReply, error)
	CurrentUser(ctx context.Context, token string) (*users.UserReply, error)
	GetUser(ctx context.Context, id uint) (*users.UserReply, error)
	ListUsers(ctx context.Context, limit, offset int) (*users.ListUsersReply, error)
	UpdateUser(ctx context.Context, req users.UpdateUserRequest) (*users.UserReply, error)
	DeleteUser(ctx context.Context, id uint) error
}

// UsersAdapter implements UsersPort over the service container.
type UsersAdapter struct {
	container mono.ServiceContainer
}

// NewUsersAdapter creates a new UsersAdapter.
func NewUsersAdapter(container mono.ServiceContainer) *UsersAdapter {
	return &UsersAdapter{container: container}
}

// CreateUser registers a new user.
func (a *UsersAdapter) CreateUser(ctx context.Context, username, email, password string) (*users.UserReply, error) {
	req := users.CreateUserRequest{Username: username, Email: email, Password: password}
	var resp users.UserReply
	if err := call(a, ctx, "create-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a bearer token.
func (a *UsersAdapter) Login(ctx context.Context, email, password string) (*users.LoginReply, error) {
	req := users.LoginRequest{Email: email, Password: password}
	var resp users.LoginReply
	if err := call(a, ctx, "login", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser resolves a bearer token to its user.
func (a *UsersAdapter) CurrentUser(ctx context.Context, token string) (*users.UserReply, error) {
	req := users.CurrentUserRequest{Token: token}
	var resp users.UserReply
	if err := call(a, ctx, "current-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUser retrieves a user by ID.
func (a *UsersAdapter) GetUser(ctx context.Context, id uint) (*users.UserReply, error) {
	req := users.GetUserRequest{ID: id}
	var resp users.UserReply
	if err := call(a, ctx, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListUsers retrieves a page of users in insertion order.
func (a *UsersAdapter) ListUsers(ctx context.Context, limit, offset int) (*users.ListUsersReply, error) {
	req := users.ListUsersRequest{Limit: limit, Offset: offset}
	var resp users.ListUsersReply
	if err := call(a, ctx, "list-users", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateUser applies a partial update to a user.
func (a *UsersAdapter) UpdateUser(ctx context.Context, req users.UpdateUserRequest) (*users.UserReply, error) {
	var resp users.UserReply
	if err := call(a, ctx, "update-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteUser removes a user by ID.
func (a *UsersAdapter) DeleteUser(ctx context.Context, id uint) error {
	req := users.DeleteUserRequest{ID: id}
	var resp users.DeleteUserReply
	return call(a, ctx, "delete-user", &req, &resp)
}

func call[T1 any, T2 any](a *UsersAdapter, ctx context.Context, service string, req T1, resp *T2) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}
