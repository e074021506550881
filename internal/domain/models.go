package domain

import (
	"fmt"
	"time"
)

// LocationType is the map layer a location belongs to. It doubles as the
// filter selected in the type list.
type LocationType string

// Location types, stored by the API with their accented names
const (
	TypeDefault    LocationType = "SATÉLITE"
	TypeRural      LocationType = "RURAL"
	TypeGeographic LocationType = "GEOGRÁFICA"
	TypeHistoric   LocationType = "HISTÓRICA"
)

// LocationTypes lists every valid type in selector order
var LocationTypes = []LocationType{TypeDefault, TypeRural, TypeGeographic, TypeHistoric}

// Valid reports whether t is a member of the enumeration
func (t LocationType) Valid() bool {
	for _, known := range LocationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns a short human readable name for the type
func (t LocationType) Label() string {
	switch t {
	case TypeDefault:
		return "Default"
	case TypeRural:
		return "Rural"
	case TypeGeographic:
		return "Geographic"
	case TypeHistoric:
		return "Historic"
	}
	return string(t)
}

// InvalidTypeError is returned when a value outside the LocationType enumeration is used
type InvalidTypeError struct {
	Value string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid location type %q", e.Value)
}

// ParseLocationType converts a wire value into a LocationType
func ParseLocationType(s string) (LocationType, error) {
	t := LocationType(s)
	if !t.Valid() {
		return "", &InvalidTypeError{Value: s}
	}
	return t, nil
}

// Location is a pinned place on the map
type Location struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	Latitude      float64      `json:"latitude"`
	Longitude     float64      `json:"longitude"`
	Images        []string     `json:"images"`
	Details       string       `json:"details,omitempty"`
	Type          LocationType `json:"type"`
	Tags          []string     `json:"tags,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	AverageRating float64      `json:"averageRating"`
	UserID        int          `json:"UserId"`
}

// Comment is a user comment attached to a location
type Comment struct {
	ID                  int       `json:"id"`
	LocationID          int       `json:"LocationId"`
	UserID              int       `json:"UserId"`
	Text                string    `json:"comment_text"`
	Address             string    `json:"comment_address"`
	CreatedAt           time.Time `json:"createdAt"`
	UserFirstName       string    `json:"user_first_name"`
	UserLastName        string    `json:"user_last_name"`
	UserProfileImageURL string    `json:"user_profile_image_url"`
}

// Rating is the score the current user gave a location
type Rating struct {
	LocationID int `json:"LocationId,omitempty"`
	Score      int `json:"score"`
}

// User is an account as returned by the users endpoints
type User struct {
	ID              int       `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	BirthDate       time.Time `json:"birth_date"`
	Address         string    `json:"address"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	ProfileImageURL string    `json:"profile_image_url"`
	ShowBirthDate   bool      `json:"show_birth_date"`
	ShowEmail       bool      `json:"show_email"`
	ShowLocation    bool      `json:"show_location"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Point is a WGS 84 coordinate in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
