package api

import (
	"context"
	"net/http"
	"strconv"

	"geographia/internal/domain"
)

// ProfileUpdate is the editable part of the current user's profile
type ProfileUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date"`
}

// Privacy holds the visibility switches of a profile
type Privacy struct {
	ShowLocation  bool `json:"show_location"`
	ShowBirthDate bool `json:"show_birth_date"`
	ShowEmail     bool `json:"show_email"`
}

// Me returns the logged in user
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/me", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the public profile of another user
func (c *Client) Profile(ctx context.Context, userID int) (*domain.User, error) {
	var out domain.User
	path := "/users/profile/" + strconv.Itoa(userID)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile saves profile changes
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) error {
	return c.do(ctx, request{method: http.MethodPut, path: "/users/me", body: p, auth: true}, nil)
}

// UpdatePrivacy saves the visibility switches
func (c *Client) UpdatePrivacy(ctx context.Context, p Privacy) error {
	return c.do(ctx, request{method: http.MethodPut, path: "/users/me/privacy", body: p, auth: true}, nil)
}

// ChangePassword replaces the password after checking the current one
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/users/me/password",
		body:   map[string]string{"actual_password": current, "new_password": next},
		auth:   true,
	}, nil)
}

// DeleteAccount removes the logged in user
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/users/me", auth: true}, nil)
}

// SaveCurrentLocation stores the user's resolved address
func (c *Client) SaveCurrentLocation(ctx context.Context, address string) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   "/users/me/location",
		body:   map[string]string{"address": address},
		auth:   true,
	}, nil)
}
