package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"geographia/internal/api"
	"geographia/internal/config"
	"geographia/internal/domain"
	"geographia/internal/geocode"
	"geographia/internal/logging"
	"geographia/internal/storage"
)

// storeFile is the durable store inside the storage directory
const storeFile = "store.json"

// app holds the collaborators every command is built from
type app struct {
	cfg      *config.Config
	cfgSvc   config.ConfigService
	log      *logrus.Logger
	closer   io.Closer
	session  *storage.Session
	client   *api.Client
	pipeline *geocode.Pipeline
	geo      geocode.Geolocator
}

// newApp loads configuration and wires storage, logging, the REST client
// and the geocoding pipeline
func newApp(cmd *cobra.Command) (*app, error) {
	cfgSvc := config.NewConfigService()
	if cfgFile != "" {
		cfgSvc = config.NewConfigServiceWithPath(cfgFile)
	}
	cfg, err := cfgSvc.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, closer, err := logging.Setup(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return nil, err
	}
	log.WithField("config", cfgSvc.Path()).Debug("configuration loaded")

	durable, err := storage.OpenFileStore(filepath.Join(cfg.Storage.Dir, storeFile))
	if err != nil {
		closer.Close()
		return nil, err
	}
	session := storage.NewSession(storage.NewMemoryStore(), durable)

	mapbox := geocode.NewMapboxProvider(geocode.MapboxOptions{
		BaseURL:           cfg.Mapbox.BaseURL,
		AccessToken:       cfg.Mapbox.AccessToken,
		Language:          cfg.Mapbox.Language,
		Country:           cfg.Mapbox.Country,
		Limit:             cfg.Mapbox.ForwardLimit,
		RequestsPerSecond: cfg.Mapbox.RequestsPerSecond,
		Burst:             cfg.Mapbox.Burst,
	}, log)
	if cfg.Mapbox.AccessToken == "" {
		log.Warn("no Mapbox access token configured, geocoding will fail")
	}
	pipeline, err := geocode.NewPipeline(mapbox, geocode.Options{
		Debounce:           cfg.Debounce(),
		GeolocationTimeout: cfg.GeolocationTimeout(),
		CacheSize:          cfg.Geocode.CacheSize,
		FallbackLabel:      cfg.Geocode.FallbackLabel,
	}, log)
	if err != nil {
		closer.Close()
		return nil, err
	}

	geo, err := deviceGeolocator(cmd, cfg)
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		cfgSvc:   cfgSvc,
		log:      log,
		closer:   closer,
		session:  session,
		client:   api.NewClient(cfg.API.BaseURL, cfg.APITimeout(), session, log),
		pipeline: pipeline,
		geo:      geo,
	}, nil
}

// Close releases the log file
func (a *app) Close() error {
	return a.closer.Close()
}

// deviceGeolocator reports the position given by --lat/--lng, then the
// configured device, and otherwise behaves like a user who declined sharing
func deviceGeolocator(cmd *cobra.Command, cfg *config.Config) (geocode.Geolocator, error) {
	flags := cmd.Flags()
	latSet, lngSet := flags.Changed("lat"), flags.Changed("lng")
	switch {
	case latSet != lngSet:
		return nil, errors.New("--lat and --lng must be given together")
	case latSet:
		return geocode.StaticGeolocator{Lat: deviceLat, Lng: deviceLng}, nil
	case cfg.Device.Enabled:
		return geocode.StaticGeolocator{Lat: cfg.Device.Latitude, Lng: cfg.Device.Longitude}, nil
	}
	return geocode.DeniedGeolocator{}, nil
}

// center is where the map starts: the device position when known
func (a *app) center() domain.Point {
	if p, ok := a.geo.(geocode.StaticGeolocator); ok {
		return domain.Point(p)
	}
	return domain.Point{Lat: a.cfg.UI.DefaultLatitude, Lng: a.cfg.UI.DefaultLongitude}
}

// requireLogin fails commands that need an account when no token is stored
func (a *app) requireLogin() error {
	if !a.session.HasToken() {
		return errors.New("not logged in, run `geographia login` first")
	}
	return nil
}
