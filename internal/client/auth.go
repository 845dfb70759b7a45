package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mediaxsd-commits/stratcomjobsapp/internal/core/domain"
)

// ErrNoToken is returned by operations that need a stored token when the
// store is empty.
var ErrNoToken = errors.New("no token stored; log in first")

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// authResponse is the body of successful login/register calls.
type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login authenticates against POST /users/login. The returned token is saved
// to the token store before the call returns.
func (c *Client) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	if err := c.validate.Check(in); err != nil {
		return nil, err
	}
	var res authResponse
	if err := c.do(ctx, http.MethodPost, "/users/login", "/users/login", in, &res); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(res.Token); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Register creates an account via POST /users/register and, like Login,
// stores the returned token before resolving.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := c.validate.Check(in); err != nil {
		return nil, err
	}
	var res authResponse
	if err := c.do(ctx, http.MethodPost, "/users/register", "/users/register", in, &res); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(res.Token); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Logout clears the stored token. Purely client-side; the backend keeps no
// session to invalidate.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Me fetches the authenticated user from GET /users/me.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/me", "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TokenClaims is the decoded, unverified payload of the stored token.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// TokenInfo decodes the stored token's claims without verifying the
// signature; the client has no key and never gates requests on expiry. It is
// display-only (the CLI whoami output).
func (c *Client) TokenInfo() (*TokenClaims, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	info := &TokenClaims{}
	info.UserID, _ = claims["user_id"].(string)
	info.Email, _ = claims["email"].(string)
	info.Role, _ = claims["role"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
