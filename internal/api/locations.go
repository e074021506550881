package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"geographia/internal/domain"
)

// NewLocation is the form submitted when pinning a location
type NewLocation struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Details   string
	Type      domain.LocationType
	Tags      []string
	Images    []Image
}

// Image is an upload attached to a form
type Image struct {
	Name string
	Data io.Reader
}

// Locations returns every location
func (c *Client) Locations(ctx context.Context) ([]domain.Location, error) {
	var out []domain.Location
	err := c.do(ctx, request{method: http.MethodGet, path: "/locations/all", auth: true}, &out)
	return out, err
}

// Location returns one location
func (c *Client) Location(ctx context.Context, id int) (*domain.Location, error) {
	var out domain.Location
	if err := c.do(ctx, request{method: http.MethodGet, path: locationPath(id), auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchLocations runs the backend text search
func (c *Client) SearchLocations(ctx context.Context, query string) ([]domain.Location, error) {
	var out []domain.Location
	path := "/locations/search?" + url.Values{"q": {query}}.Encode()
	err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true}, &out)
	return out, err
}

// DeleteLocation removes a location the caller owns
func (c *Client) DeleteLocation(ctx context.Context, id int) error {
	return c.do(ctx, request{method: http.MethodDelete, path: locationPath(id), auth: true}, nil)
}

// CreateLocation submits loc as a multipart form
func (c *Client) CreateLocation(ctx context.Context, loc NewLocation) (*domain.Location, error) {
	if !loc.Type.Valid() {
		return nil, &domain.InvalidTypeError{Value: string(loc.Type)}
	}

	body, contentType, err := encodeLocationForm(loc)
	if err != nil {
		return nil, &Failure{Kind: KindUnexpected, Op: "POST /locations/create", Err: err}
	}

	var out domain.Location
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/locations/create",
		raw:         body,
		contentType: contentType,
		auth:        true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func encodeLocationForm(loc NewLocation) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", loc.Name},
		{"address", loc.Address},
		{"latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64)},
		{"longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64)},
		{"type", string(loc.Type)},
	}
	if loc.Details != "" {
		fields = append(fields, [2]string{"details", loc.Details})
	}
	if len(loc.Tags) > 0 {
		tags, err := json.Marshal(loc.Tags)
		if err != nil {
			return nil, "", err
		}
		fields = append(fields, [2]string{"tags", string(tags)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for _, img := range loc.Images {
		part, err := w.CreateFormFile("images", img.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, img.Data); err != nil {
			return nil, "", fmt.Errorf("image %s: %w", img.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// Comments lists the comments of a location
func (c *Client) Comments(ctx context.Context, locationID int) ([]domain.Comment, error) {
	var out []domain.Comment
	err := c.do(ctx, request{method: http.MethodGet, path: commentsPath(locationID), auth: true}, &out)
	return out, err
}

// AddComment posts a comment. address is where the author was, or the fallback label.
func (c *Client) AddComment(ctx context.Context, locationID int, text, address string) (*domain.Comment, error) {
	var out domain.Comment
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   commentsPath(locationID),
		body:   map[string]string{"comment_text": text, "comment_address": address},
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MyRating returns the caller's rating, nil when they have not rated yet
func (c *Client) MyRating(ctx context.Context, locationID int) (*domain.Rating, error) {
	var out domain.Rating
	if err := c.do(ctx, request{method: http.MethodGet, path: ratePath(locationID), auth: true}, &out); err != nil {
		return nil, err
	}
	if out.Score == 0 {
		return nil, nil
	}
	return &out, nil
}

// AddRating rates a location for the first time
func (c *Client) AddRating(ctx context.Context, locationID, score int) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   ratePath(locationID),
		body:   map[string]int{"score": score},
		auth:   true,
	}, nil)
}

// UpdateRating changes an existing rating
func (c *Client) UpdateRating(ctx context.Context, locationID, score int) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   ratePath(locationID),
		body:   map[string]int{"score": score},
		auth:   true,
	}, nil)
}

func locationPath(id int) string { return "/locations/location/" + strconv.Itoa(id) }
func ratePath(id int) string     { return locationPath(id) + "/rate" }
func commentsPath(id int) string { return "/comments/" + strconv.Itoa(id) }
