package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override the file
const (
	EnvAPIURL       = "GEOGRAPHIA_API_URL"
	EnvMapboxToken  = "MAPBOX_ACCESS_TOKEN"
	EnvMapboxURL    = "MAPBOX_BASE_URL"
	EnvLogLevel     = "GEOGRAPHIA_LOG_LEVEL"
	EnvStorageDir   = "GEOGRAPHIA_STORAGE_DIR"
	EnvDeviceLatLng = "GEOGRAPHIA_DEVICE_POSITION" // "lat,lng"
)

// Config represents the application configuration
type Config struct {
	Version int             `toml:"version"`
	API     APISettings     `toml:"api"`
	Mapbox  MapboxSettings  `toml:"mapbox"`
	Geocode GeocodeSettings `toml:"geocode"`
	Storage StorageSettings `toml:"storage"`
	Log     LogSettings     `toml:"log"`
	Device  DeviceSettings  `toml:"device"`
	UI      UISettings      `toml:"ui"`
}

// APISettings configures the REST backend
type APISettings struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// MapboxSettings configures the geocoding provider
type MapboxSettings struct {
	BaseURL           string  `toml:"base_url"`
	AccessToken       string  `toml:"access_token,omitempty"`
	Language          string  `toml:"language"`
	Country           string  `toml:"country"`
	ForwardLimit      int     `toml:"forward_limit"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// GeocodeSettings tunes the resolution pipeline
type GeocodeSettings struct {
	DebounceMS           int    `toml:"debounce_ms"`
	GeolocationTimeoutMS int    `toml:"geolocation_timeout_ms"`
	CacheSize            int    `toml:"cache_size"`
	FallbackLabel        string `toml:"fallback_label"`
}

// StorageSettings locates the durable client store
type StorageSettings struct {
	Dir string `toml:"dir"`
}

// LogSettings configures logging
type LogSettings struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// DeviceSettings is the position the terminal reports as the device location.
// Disabled means the device does not share its position.
type DeviceSettings struct {
	Enabled   bool    `toml:"enabled"`
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	DefaultLatitude  float64 `toml:"default_latitude"`
	DefaultLongitude float64 `toml:"default_longitude"`
}

// Debounce returns the forward search quiet period
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Geocode.DebounceMS) * time.Millisecond
}

// GeolocationTimeout returns the ceiling for acquiring device coordinates
func (c *Config) GeolocationTimeout() time.Duration {
	return time.Duration(c.Geocode.GeolocationTimeoutMS) * time.Millisecond
}

// APITimeout returns the per request timeout for the REST client
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	filePath string
	envFiles []string
}

// NewConfigService creates a config service using the user config directory
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return NewConfigServiceWithPath(filepath.Join(configDir, "geographia", "config.toml"))
}

// NewConfigServiceWithPath creates a config service reading and writing path.
// .env files are loaded into the environment before overrides are applied.
func NewConfigServiceWithPath(path string, envFiles ...string) ConfigService {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &configService{filePath: path, envFiles: envFiles}
}

// Path returns the file Load and Save use
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, falling back to defaults when the
// file does not exist, then applies environment overrides
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	if err := cs.loadEnvFiles(); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path. Missing keys keep
// their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The access token may be set, keep the file private
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (cs *configService) loadEnvFiles() error {
	for _, f := range cs.envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvMapboxToken); v != "" {
		cfg.Mapbox.AccessToken = v
	}
	if v := os.Getenv(EnvMapboxURL); v != "" {
		cfg.Mapbox.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvStorageDir); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv(EnvDeviceLatLng); v != "" {
		lat, lng, err := ParseLatLng(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDeviceLatLng, err)
		}
		cfg.Device = DeviceSettings{Enabled: true, Latitude: lat, Longitude: lng}
	}
	return nil
}

// ParseLatLng parses "lat,lng"
func ParseLatLng(s string) (float64, float64, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok || latStr == "" || lngStr == "" {
		return 0, 0, fmt.Errorf("want \"lat,lng\", got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude: %w", err)
	}
	return lat, lng, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dataDir, err := os.UserCacheDir()
	if err != nil {
		dataDir = "."
	}

	return &Config{
		Version: 1,
		API: APISettings{
			BaseURL:        "http://localhost:3000/api",
			TimeoutSeconds: 15,
		},
		Mapbox: MapboxSettings{
			BaseURL:           "https://api.mapbox.com/search/geocode/v6",
			Language:          "es",
			Country:           "AR",
			ForwardLimit:      5,
			RequestsPerSecond: 5,
			Burst:             2,
		},
		Geocode: GeocodeSettings{
			DebounceMS:           300,
			GeolocationTimeoutMS: 10000,
			CacheSize:            256,
			FallbackLabel:        "Ubicación no compartida",
		},
		Storage: StorageSettings{
			Dir: filepath.Join(dataDir, "geographia"),
		},
		Log: LogSettings{
			File:  "geographia.log",
			Level: "info",
		},
		UI: UISettings{
			DefaultLatitude:  -34.6037,
			DefaultLongitude: -58.3816,
		},
	}
}
