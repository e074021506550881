package api

import (
	"context"
	"net/http"
)

// Registration is the body of a register call
type Registration struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
	Address   string `json:"address"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &resp)
	return resp.Token, err
}

// Register creates an account
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: reg}, nil)
}

// RequestPasswordReset starts the recovery flow and returns the reset token
// the following steps need
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/request-password-reset",
		body:   map[string]string{"email": email},
	}, &resp)
	return resp.Token, err
}

// VerifyCode checks the emailed code against the reset token
func (c *Client) VerifyCode(ctx context.Context, token, code string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/verify-code",
		body:   map[string]string{"token": token, "code": code},
	}, nil)
}

// ResetPassword sets a new password once the code was verified
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/reset-password",
		body:   map[string]string{"token": token, "newPassword": newPassword},
	}, nil)
}
