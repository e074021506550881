package geocode

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"geographia/internal/domain"
)

// Options tunes a Pipeline. Zero values take the defaults.
type Options struct {
	Debounce           time.Duration // default 300ms
	GeolocationTimeout time.Duration // default 10s
	CacheSize          int           // default 256
	FallbackLabel      string        // default FallbackLabel
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = 300 * time.Millisecond
	}
	if o.GeolocationTimeout <= 0 {
		o.GeolocationTimeout = 10 * time.Second
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 256
	}
	if o.FallbackLabel == "" {
		o.FallbackLabel = FallbackLabel
	}
	return o
}

// Pipeline resolves addresses through a Provider
type Pipeline struct {
	provider Provider
	opts     Options
	cache    *lru.Cache[string, Address]
	log      logrus.FieldLogger
}

// NewPipeline creates a pipeline over provider
func NewPipeline(provider Provider, opts Options, log logrus.FieldLogger) (*Pipeline, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	opts = opts.withDefaults()
	cache, err := lru.New[string, Address](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("reverse cache: %w", err)
	}
	return &Pipeline{
		provider: provider,
		opts:     opts,
		cache:    cache,
		log:      log.WithField("component", "geocode"),
	}, nil
}

// FallbackLabel returns the label unresolved addresses carry
func (p *Pipeline) FallbackLabel() string {
	return p.opts.FallbackLabel
}

// ReverseLookup resolves a coordinate to an address. It never fails: any
// provider error or empty answer yields the fallback label. No coordinate
// validation is done.
func (p *Pipeline) ReverseLookup(ctx context.Context, lat, lng float64) Address {
	key := cacheKey(lat, lng)
	if addr, ok := p.cache.Get(key); ok {
		return addr
	}

	pt := domain.Point{Lat: lat, Lng: lng}
	candidates, err := p.provider.Reverse(ctx, lat, lng)
	if err != nil {
		p.log.WithError(err).WithField("point", key).Info("reverse lookup failed, using fallback")
		return p.fallback(pt, fmt.Errorf("%w: %w", ErrUnresolved, err))
	}
	if len(candidates) == 0 {
		p.log.WithField("point", key).Debug("reverse lookup found nothing")
		return p.fallback(pt, ErrUnresolved)
	}

	best := candidates[0]
	addr := Address{
		Label:       best.Label,
		FullAddress: best.FullAddress,
		Point:       pt,
		Resolved:    true,
	}
	p.cache.Add(key, addr)
	return addr
}

// ResolveDeviceAddress runs the device chain: coordinates from geo, bounded by
// the geolocation timeout, then a reverse lookup, then the fallback label.
// A nil geo means the device has no geolocation.
func (p *Pipeline) ResolveDeviceAddress(ctx context.Context, geo Geolocator) Address {
	if geo == nil {
		return p.fallback(domain.Point{}, fmt.Errorf("%w: %w", ErrUnresolved, ErrGeolocationUnsupported))
	}

	pt, err := p.locate(ctx, geo)
	if err != nil {
		p.log.WithError(err).Info("device position unavailable, using fallback")
		return p.fallback(domain.Point{}, fmt.Errorf("%w: %w", ErrUnresolved, err))
	}

	return p.ReverseLookup(ctx, pt.Lat, pt.Lng)
}

// locate enforces the timeout even for geolocators that ignore ctx
func (p *Pipeline) locate(ctx context.Context, geo Geolocator) (domain.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.GeolocationTimeout)
	defer cancel()

	type fix struct {
		pt  domain.Point
		err error
	}
	done := make(chan fix, 1)
	go func() {
		pt, err := geo.Locate(ctx)
		done <- fix{pt, err}
	}()

	select {
	case f := <-done:
		return f.pt, f.err
	case <-ctx.Done():
		return domain.Point{}, ctx.Err()
	}
}

// Forward runs a single forward search without debounce
func (p *Pipeline) Forward(ctx context.Context, text string) Result {
	if isBlank(text) {
		return Result{Query: text, Candidates: []Candidate{}}
	}
	candidates, err := p.provider.Forward(ctx, text)
	if err != nil {
		return Result{Query: text, Err: err}
	}
	return Result{Query: text, Candidates: candidates}
}

func (p *Pipeline) fallback(pt domain.Point, err error) Address {
	return Address{Label: p.opts.FallbackLabel, Point: pt, Err: err}
}
