package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geographia/internal/domain"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(t *testing.T, token string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", time.Second, StaticToken(token), quietLogger())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClassify(t *testing.T) {
	cases := map[int]Kind{
		404: KindNotFound,
		409: KindConflict,
		401: KindUnauthorized,
		400: KindBadRequest,
		500: KindUnexpected,
		403: KindUnexpected,
	}
	for status, want := range cases {
		assert.Equal(t, want, Classify(status), status)
	}
}

func TestFailureKinds(t *testing.T) {
	for _, status := range []int{400, 401, 404, 409, 500} {
		c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, status, map[string]string{"message": "nope"})
		})
		err := c.DeleteLocation(context.Background(), 7)
		require.Error(t, err)

		var f *Failure
		require.ErrorAs(t, err, &f)
		assert.Equal(t, status, f.Status)
		assert.Equal(t, Classify(status), f.Kind)
		assert.Equal(t, "nope", f.Message)
		assert.Equal(t, "DELETE /locations/location/7", f.Op)
	}
}

func TestTransportErrorIsUnexpected(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil, quietLogger())
	_, err := c.Locations(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("plain")))
}

func TestLoginAndBearer(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			assert.Empty(t, r.Header.Get("Authorization"), "login is unauthenticated")
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ana@example.com", body["email"])
			writeJSON(w, 200, map[string]string{"token": "jwt"})
		case "/api/users/me":
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			writeJSON(w, 200, domain.User{ID: 3, FirstName: "Ana"})
		default:
			http.NotFound(w, r)
		}
	})

	token, err := c.Login(context.Background(), "ana@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.FullName())
}

func TestSearchEncodesQuery(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/locations/search", r.URL.Path)
		assert.Equal(t, "cerro & lago", r.URL.Query().Get("q"))
		writeJSON(w, 200, []domain.Location{{ID: 1, Name: "Cerro"}})
	})
	locs, err := c.SearchLocations(context.Background(), "cerro & lago")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "Cerro", locs[0].Name)
}

func TestCreateLocationMultipart(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Salto", r.FormValue("name"))
		assert.Equal(t, "-31.4", r.FormValue("latitude"))
		assert.Equal(t, "RURAL", r.FormValue("type"))
		assert.Equal(t, `["agua","sendero"]`, r.FormValue("tags"))
		assert.Empty(t, r.FormValue("details"))
		require.Len(t, r.MultipartForm.File["images"], 1)
		assert.Equal(t, "a.jpg", r.MultipartForm.File["images"][0].Filename)
		writeJSON(w, 201, domain.Location{ID: 9, Name: "Salto"})
	})

	loc, err := c.CreateLocation(context.Background(), NewLocation{
		Name:      "Salto",
		Latitude:  -31.4,
		Longitude: -64.2,
		Type:      domain.TypeRural,
		Tags:      []string{"agua", "sendero"},
		Images:    []Image{{Name: "a.jpg", Data: strings.NewReader("jpeg")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, loc.ID)
}

func TestCreateLocationRejectsInvalidType(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.CreateLocation(context.Background(), NewLocation{Type: "PLAYA"})
	var typeErr *domain.InvalidTypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestRatingAndComment(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]string{}
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls[r.Method+" "+r.URL.Path] = string(body)
		mu.Unlock()
		if r.Method == http.MethodGet {
			writeJSON(w, 200, map[string]any{})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	rating, err := c.MyRating(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, rating, "score 0 means not rated")

	require.NoError(t, c.AddRating(ctx, 4, 5))
	require.NoError(t, c.UpdateRating(ctx, 4, 3))
	comment, err := c.AddComment(ctx, 4, "hermoso", "Córdoba, Córdoba")
	require.NoError(t, err)
	assert.NotNil(t, comment)

	assert.JSONEq(t, `{"score":5}`, calls["POST /api/locations/location/4/rate"])
	assert.JSONEq(t, `{"score":3}`, calls["PUT /api/locations/location/4/rate"])
	assert.JSONEq(t, `{"comment_text":"hermoso","comment_address":"Córdoba, Córdoba"}`, calls["POST /api/comments/4"])
}

func TestLoadLocationDetail(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/locations/location/7":
			writeJSON(w, 200, domain.Location{ID: 7, UserID: 3})
		case "/api/comments/7":
			writeJSON(w, 404, map[string]string{"message": "no comments"})
		case "/api/locations/location/7/rate":
			writeJSON(w, 500, nil)
		case "/api/users/me":
			writeJSON(w, 200, domain.User{ID: 3})
		default:
			http.NotFound(w, r)
		}
	})

	d, err := c.LoadLocationDetail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, d.Location.ID)
	assert.NotNil(t, d.Comments)
	assert.Empty(t, d.Comments)
	assert.Nil(t, d.MyRating)
	assert.True(t, d.Owned())
}

func TestLoadLocationDetailMissingLocation(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/locations/location/8" {
			writeJSON(w, 404, map[string]string{"message": "location not found"})
			return
		}
		writeJSON(w, 200, []domain.Comment{})
	})

	_, err := c.LoadLocationDetail(context.Background(), 8)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestNilLoggerFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no existe"})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, time.Second, nil, nil)
	_, err := c.Locations(context.Background())
	assert.True(t, IsNotFound(err))
}
