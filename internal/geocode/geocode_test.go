package geocode

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
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

type fakeProvider struct {
	mu           sync.Mutex
	forwardCalls []string
	reverseCalls int
	forward      func(ctx context.Context, text string) ([]Candidate, error)
	reverse      func(ctx context.Context, lat, lng float64) ([]Candidate, error)
}

func (f *fakeProvider) Forward(ctx context.Context, text string) ([]Candidate, error) {
	f.mu.Lock()
	f.forwardCalls = append(f.forwardCalls, text)
	fn := f.forward
	f.mu.Unlock()
	if fn == nil {
		return []Candidate{{Label: text}}, nil
	}
	return fn(ctx, text)
}

func (f *fakeProvider) Reverse(ctx context.Context, lat, lng float64) ([]Candidate, error) {
	f.mu.Lock()
	f.reverseCalls++
	fn := f.reverse
	f.mu.Unlock()
	if fn == nil {
		return []Candidate{{Label: "Córdoba, Córdoba"}}, nil
	}
	return fn(ctx, lat, lng)
}

func (f *fakeProvider) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.forwardCalls...)
}

func newPipeline(t *testing.T, p Provider, opts Options) *Pipeline {
	t.Helper()
	pl, err := NewPipeline(p, opts, quietLogger())
	require.NoError(t, err)
	return pl
}

func receive(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "results closed")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
		return Result{}
	}
}

func assertNoResult(t *testing.T, ch <-chan Result, wait time.Duration) {
	t.Helper()
	select {
	case r, ok := <-ch:
		if ok {
			t.Fatalf("unexpected result for %q", r.Query)
		}
	case <-time.After(wait):
	}
}

func TestSearchDebounceCollapsesKeystrokes(t *testing.T) {
	fp := &fakeProvider{}
	s := newPipeline(t, fp, Options{Debounce: 30 * time.Millisecond}).NewSearch()
	defer s.Close()

	s.Query("x")
	s.Query("xy")

	r := receive(t, s.Results())
	assert.Equal(t, "xy", r.Query)
	require.NoError(t, r.Err)
	assert.Equal(t, []Candidate{{Label: "xy"}}, r.Candidates)

	assertNoResult(t, s.Results(), 100*time.Millisecond)
	assert.Equal(t, []string{"xy"}, fp.calls(), "exactly one provider call")
}

func TestSearchBlankTextIsImmediate(t *testing.T) {
	fp := &fakeProvider{}
	s := newPipeline(t, fp, Options{Debounce: time.Hour}).NewSearch()
	defer s.Close()

	s.Query("   ")
	select {
	case r := <-s.Results():
		assert.Empty(t, r.Candidates)
		assert.NotNil(t, r.Candidates)
		assert.NoError(t, r.Err)
	default:
		t.Fatal("blank query should deliver without waiting")
	}
	assert.Empty(t, fp.calls())
}

func TestSearchBlankCancelsPendingQuery(t *testing.T) {
	fp := &fakeProvider{}
	s := newPipeline(t, fp, Options{Debounce: 20 * time.Millisecond}).NewSearch()
	defer s.Close()

	s.Query("mendoza")
	s.Query("")
	r := receive(t, s.Results())
	assert.Equal(t, "", r.Query)

	assertNoResult(t, s.Results(), 80*time.Millisecond)
	assert.Empty(t, fp.calls())
}

func TestSearchDiscardsSupersededResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slowErr := make(chan error, 1)

	fp := &fakeProvider{forward: func(ctx context.Context, text string) ([]Candidate, error) {
		if text == "slow" {
			close(started)
			<-release
			slowErr <- ctx.Err()
			return []Candidate{{Label: "stale"}}, nil
		}
		return []Candidate{{Label: text}}, nil
	}}
	s := newPipeline(t, fp, Options{Debounce: 10 * time.Millisecond}).NewSearch()
	defer s.Close()

	s.Query("slow")
	<-started
	s.Query("fast")

	r := receive(t, s.Results())
	assert.Equal(t, "fast", r.Query)

	close(release)
	assert.ErrorIs(t, <-slowErr, context.Canceled, "superseded request is cancelled")
	assertNoResult(t, s.Results(), 80*time.Millisecond)
}

func TestSearchProviderError(t *testing.T) {
	boom := errors.New("boom")
	fp := &fakeProvider{forward: func(context.Context, string) ([]Candidate, error) { return nil, boom }}
	s := newPipeline(t, fp, Options{Debounce: time.Millisecond}).NewSearch()
	defer s.Close()

	s.Query("rosario")
	r := receive(t, s.Results())
	assert.ErrorIs(t, r.Err, boom)
	assert.Empty(t, r.Candidates)
}

func TestSearchClose(t *testing.T) {
	fp := &fakeProvider{}
	s := newPipeline(t, fp, Options{Debounce: 10 * time.Millisecond}).NewSearch()

	s.Query("salta")
	s.Close()
	s.Close()
	s.Query("jujuy")

	_, ok := <-s.Results()
	assert.False(t, ok)
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, fp.calls())
}

func TestReverseLookupCachesResolved(t *testing.T) {
	fp := &fakeProvider{}
	pl := newPipeline(t, fp, Options{})

	a := pl.ReverseLookup(context.Background(), -31.416668, -64.183334)
	assert.True(t, a.Resolved)
	assert.NoError(t, a.Err)
	assert.Equal(t, "Córdoba, Córdoba", a.Label)

	b := pl.ReverseLookup(context.Background(), -31.4166681, -64.1833339)
	assert.Equal(t, a.Label, b.Label)
	assert.Equal(t, 1, fp.reverseCalls, "same rounded point hits the cache")
}

func TestReverseLookupNeverFails(t *testing.T) {
	boom := errors.New("network down")
	fp := &fakeProvider{reverse: func(context.Context, float64, float64) ([]Candidate, error) { return nil, boom }}
	pl := newPipeline(t, fp, Options{FallbackLabel: "Sin ubicación"})

	a := pl.ReverseLookup(context.Background(), 1, 2)
	assert.False(t, a.Resolved)
	assert.Equal(t, "Sin ubicación", a.Label)
	assert.ErrorIs(t, a.Err, ErrUnresolved)
	assert.ErrorIs(t, a.Err, boom)

	pl.ReverseLookup(context.Background(), 1, 2)
	assert.Equal(t, 2, fp.reverseCalls, "failures are not cached")

	fp.reverse = func(context.Context, float64, float64) ([]Candidate, error) { return nil, nil }
	empty := pl.ReverseLookup(context.Background(), 3, 4)
	assert.Equal(t, "Sin ubicación", empty.Label)
	assert.ErrorIs(t, empty.Err, ErrUnresolved)
}

func TestResolveDeviceAddressChain(t *testing.T) {
	fp := &fakeProvider{}
	pl := newPipeline(t, fp, Options{GeolocationTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	a := pl.ResolveDeviceAddress(ctx, StaticGeolocator{Lat: -34.6, Lng: -58.4})
	assert.True(t, a.Resolved)
	assert.Equal(t, domain.Point{Lat: -34.6, Lng: -58.4}, a.Point)

	unsupported := pl.ResolveDeviceAddress(ctx, nil)
	assert.Equal(t, FallbackLabel, unsupported.Label)
	assert.ErrorIs(t, unsupported.Err, ErrGeolocationUnsupported)

	denied := pl.ResolveDeviceAddress(ctx, DeniedGeolocator{})
	assert.Equal(t, FallbackLabel, denied.Label)
	assert.ErrorIs(t, denied.Err, ErrPermissionDenied)

	hang := GeolocatorFunc(func(context.Context) (domain.Point, error) {
		time.Sleep(time.Second)
		return domain.Point{}, nil
	})
	start := time.Now()
	slow := pl.ResolveDeviceAddress(ctx, hang)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.ErrorIs(t, slow.Err, context.DeadlineExceeded)
	assert.Equal(t, FallbackLabel, slow.Label)

	assert.Equal(t, 1, fp.reverseCalls, "only the located device reached the provider")
}

const forwardBody = `{"type":"FeatureCollection","features":[
 {"type":"Feature","geometry":{"type":"Point","coordinates":[-64.18,-31.41]},
  "properties":{"name":"Cañada","full_address":"La Cañada 100, Córdoba, Argentina"}},
 {"type":"Feature","geometry":{"type":"Point","coordinates":[-58.38,-34.60]},
  "properties":{"name":"Obelisco","coordinates":{"latitude":-34.6037,"longitude":-58.3816}}},
 {"type":"Feature","properties":{}}
]}`

const reverseBody = `{"features":[{"properties":{"full_address":"Av. Colón 500",
 "context":{"place":{"name":"Córdoba"},"region":{"name":"Córdoba"}}}}]}`

func TestMapboxProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "pk.test", q.Get("access_token"))
		assert.Equal(t, "es", q.Get("language"))
		switch r.URL.Path {
		case "/v6/forward":
			assert.Equal(t, "cañada córdoba", q.Get("q"))
			assert.Equal(t, "5", q.Get("limit"))
			assert.Equal(t, "AR", q.Get("country"))
			_, _ = io.WriteString(w, forwardBody)
		case "/v6/reverse":
			assert.Equal(t, "-64.18", q.Get("longitude"))
			assert.Equal(t, "-31.41", q.Get("latitude"))
			assert.Equal(t, "1", q.Get("limit"))
			_, _ = io.WriteString(w, reverseBody)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	mb := NewMapboxProvider(MapboxOptions{
		BaseURL:     srv.URL + "/v6/",
		AccessToken: "pk.test",
		Language:    "es",
		Country:     "AR",
	}, quietLogger())

	fwd, err := mb.Forward(context.Background(), "cañada córdoba")
	require.NoError(t, err)
	require.Len(t, fwd, 2, "features without a label are skipped")
	assert.Equal(t, "La Cañada 100, Córdoba, Argentina", fwd[0].Label)
	assert.Equal(t, domain.Point{Lat: -31.41, Lng: -64.18}, fwd[0].Point)
	assert.Equal(t, "Obelisco", fwd[1].Label)
	assert.Equal(t, domain.Point{Lat: -34.6037, Lng: -58.3816}, fwd[1].Point)

	rev, err := mb.Reverse(context.Background(), -31.41, -64.18)
	require.NoError(t, err)
	require.Len(t, rev, 1)
	assert.Equal(t, "Córdoba, Córdoba", rev[0].Label)
	assert.Equal(t, "Av. Colón 500", rev[0].FullAddress)
}

func TestMapboxUpstreamErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Authorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	mb := NewMapboxProvider(MapboxOptions{BaseURL: srv.URL}, quietLogger())
	_, err := mb.Forward(context.Background(), "x")
	require.Error(t, err)

	pl := newPipeline(t, mb, Options{})
	a := pl.ReverseLookup(context.Background(), 0, 0)
	assert.False(t, a.Resolved)
	assert.Equal(t, FallbackLabel, a.Label)
}

func TestMapboxRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"features":[]}`)
	}))
	defer srv.Close()

	mb := NewMapboxProvider(MapboxOptions{BaseURL: srv.URL, RequestsPerSecond: 0.001, Burst: 1}, quietLogger())
	_, err := mb.Forward(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = mb.Forward(ctx, "second")
	require.Error(t, err, "second request waits for a token and gives up with the context")
}

func TestNilLoggerFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	mapbox := NewMapboxProvider(MapboxOptions{BaseURL: srv.URL, AccessToken: "tok"}, nil)
	p, err := NewPipeline(mapbox, Options{}, nil)
	require.NoError(t, err)

	addr := p.ReverseLookup(context.Background(), -31.4, -64.2)
	assert.False(t, addr.Resolved)
	assert.Equal(t, p.FallbackLabel(), addr.Label)
}
