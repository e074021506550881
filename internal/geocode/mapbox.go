package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"geographia/internal/domain"
)

// MapboxOptions configures MapboxProvider
type MapboxOptions struct {
	BaseURL           string // e.g. https://api.mapbox.com/search/geocode/v6
	AccessToken       string
	Language          string
	Country           string
	Limit             int
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// MapboxProvider queries the Mapbox geocoding v6 API
type MapboxProvider struct {
	opts    MapboxOptions
	client  *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// NewMapboxProvider creates a provider. A zero RequestsPerSecond disables throttling.
func NewMapboxProvider(opts MapboxOptions, log logrus.FieldLogger) *MapboxProvider {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &MapboxProvider{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		log:     log.WithField("component", "mapbox"),
	}
}

// Forward searches places by text
func (m *MapboxProvider) Forward(ctx context.Context, text string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("access_token", m.opts.AccessToken)
	params.Set("limit", strconv.Itoa(m.opts.Limit))
	if m.opts.Language != "" {
		params.Set("language", m.opts.Language)
	}
	if m.opts.Country != "" {
		params.Set("country", m.opts.Country)
	}

	body, err := m.get(ctx, "/forward", params)
	if err != nil {
		return nil, err
	}
	return parseFeatures(body, forwardLabel), nil
}

// Reverse returns the place at a coordinate
func (m *MapboxProvider) Reverse(ctx context.Context, lat, lng float64) ([]Candidate, error) {
	params := url.Values{}
	params.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("access_token", m.opts.AccessToken)
	params.Set("limit", "1")
	if m.opts.Language != "" {
		params.Set("language", m.opts.Language)
	}

	body, err := m.get(ctx, "/reverse", params)
	if err != nil {
		return nil, err
	}
	return parseFeatures(body, reverseLabel), nil
}

func (m *MapboxProvider) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s%s?%s", m.opts.BaseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "geographia/1.0")

	resp, err := m.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			m.log.WithError(err).WithField("endpoint", endpoint).Warn("mapbox request failed")
		}
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		m.log.WithFields(logrus.Fields{"endpoint": endpoint, "status": resp.StatusCode}).Warn("mapbox upstream error")
		return nil, fmt.Errorf("upstream api error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("mapbox %s: invalid json", endpoint)
	}
	return body, nil
}

// parseFeatures reads a GeoJSON feature collection, skipping features without a label
func parseFeatures(body []byte, label func(props gjson.Result) string) []Candidate {
	features := gjson.GetBytes(body, "features").Array()
	out := make([]Candidate, 0, len(features))
	for _, f := range features {
		props := f.Get("properties")
		name := label(props)
		if name == "" {
			continue
		}
		out = append(out, Candidate{
			Label:       name,
			FullAddress: props.Get("full_address").String(),
			Point:       featurePoint(f),
		})
	}
	return out
}

func forwardLabel(props gjson.Result) string {
	if full := props.Get("full_address").String(); full != "" {
		return full
	}
	return props.Get("name").String()
}

// reverseLabel is "place, region", the granularity shared with other users
func reverseLabel(props gjson.Result) string {
	place := props.Get("context.place.name").String()
	if place == "" {
		return props.Get("full_address").String()
	}
	if region := props.Get("context.region.name").String(); region != "" {
		return place + ", " + region
	}
	return place
}

func featurePoint(f gjson.Result) domain.Point {
	if c := f.Get("properties.coordinates"); c.Exists() {
		return domain.Point{Lat: c.Get("latitude").Float(), Lng: c.Get("longitude").Float()}
	}
	coords := f.Get("geometry.coordinates").Array()
	if len(coords) == 2 {
		return domain.Point{Lat: coords[1].Float(), Lng: coords[0].Float()}
	}
	return domain.Point{}
}
