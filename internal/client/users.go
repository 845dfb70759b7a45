package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mediaxsd-commits/stratcomjobsapp/internal/core/domain"
)

type UpdateUserInput struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"required,oneof=admin operator"`
}

// ListUsers fetches every account from GET /users. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/users", "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser changes an account via PUT /users/:id. Admin only.
func (c *Client) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	if err := c.validate.Check(in); err != nil {
		return nil, err
	}
	var user domain.User
	if err := c.do(ctx, http.MethodPut, "/users/:id", "/users/"+url.PathEscape(id), in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account via DELETE /users/:id. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/:id", "/users/"+url.PathEscape(id), nil, nil)
}
