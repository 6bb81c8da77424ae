package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for parkgate.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Defaults DefaultsConfig `yaml:"defaults"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// UpstreamConfig contains connection settings for the facility-management backend.
type UpstreamConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Timeout is the per-call timeout in seconds. It applies to each
	// individual upstream request, not to a whole gateway request.
	Timeout int    `yaml:"timeout"`
	Locale  string `yaml:"locale"`
	// Collections maps a logical collection name to its upstream path and
	// the ordered list of candidate request shapes to probe for it.
	Collections map[string]CollectionConfig `yaml:"collections"`
}

// CollectionConfig describes one upstream collection.
//
// Shapes is an ordered list of candidate builders tried by the resolver.
// Known shape names: path_suffix, query_id, query_facility_id, odata_filter,
// legacy_filter, and "sub:<segment>" for nested sub-resource paths.
// The order is significant and is preserved exactly when probing.
type CollectionConfig struct {
	Path        string   `yaml:"path"`
	Shapes      []string `yaml:"shapes"`
	LocaleAware bool     `yaml:"locale_aware"`
}

// CacheConfig contains settings for the advisory upstream lookup cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	// TTL is the entry lifetime in seconds. Occupancy data changes
	// continuously upstream, so this should stay short.
	TTL  int `yaml:"ttl"`
	Size int `yaml:"size"`
}

// DefaultsConfig contains fallback display texts rendered when the backend
// reports no tariff or opening-hours data for a facility. Empty values
// (the default) leave the affected fields empty.
type DefaultsConfig struct {
	Rates        string `yaml:"rates"`
	OpeningTimes string `yaml:"opening_times"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	// AssetDir optionally serves the browser console from the filesystem
	// instead of the embedded assets (development mode).
	AssetDir string `yaml:"asset_dir"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Collection names used throughout the gateway. Each must have an entry in
// Upstream.Collections (defaults are provided for all of them).
const (
	ColFacilities          = "facilities"
	ColFacilityDefinitions = "facility_definitions"
	ColFeatures            = "features"
	ColOccupancies         = "occupancies"
	ColDevices             = "devices"
	ColAttributes          = "attributes"
	ColContacts            = "contacts"
	ColMethods             = "methods"
	ColStatus              = "status"
	ColDeviceStatus        = "device_status"
	ColFiles               = "files"
	ColChargingStations    = "charging_stations"
)

// Load reads, parses and validates the configuration from a YAML file.
//
// Values are resolved in three stages: built-in defaults, then the YAML
// file, then environment variable overrides (PARKGATE_SECTION_KEY).
// For example: PARKGATE_UPSTREAM_PASSWORD, PARKGATE_API_PORT.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// A config file that lists only some collections keeps the default
	// table for the rest.
	if cfg.Upstream.Collections == nil {
		cfg.Upstream.Collections = map[string]CollectionConfig{}
	}
	for name, col := range defaultCollections() {
		if _, ok := cfg.Upstream.Collections[name]; !ok {
			cfg.Upstream.Collections[name] = col
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
// Used by tests and by the CLI when no config file is given.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:     "https://control.example.test/ipaw",
			Timeout:     20,
			Locale:      "de-DE",
			Collections: defaultCollections(),
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30,
			Size:    512,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 3030,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// defaultCollections returns the default per-collection candidate shape table.
//
// This is the single place where upstream addressing guesses live. Adding a
// new upstream shape means adding it here (or in the YAML equivalent), not
// touching any call site.
func defaultCollections() map[string]CollectionConfig {
	return map[string]CollectionConfig{
		ColFacilities: {
			Path:   "/services/v4x0/facilities",
			Shapes: []string{"path_suffix", "query_id", "query_facility_id", "odata_filter", "legacy_filter"},
		},
		ColFacilityDefinitions: {
			Path:   "/services/v4x0/facility-definitions",
			Shapes: []string{"path_suffix", "query_id"},
		},
		ColFeatures: {
			Path:   "/services/v4x0/features",
			Shapes: []string{"query_facility_id", "sub:facility"},
		},
		ColOccupancies: {
			Path:        "/rest/v1/operation/occupancies",
			Shapes:      []string{"sub:facility", "query_facility_id"},
			LocaleAware: true,
		},
		ColDevices: {
			Path:   "/rest/v1/operation/devices",
			Shapes: []string{"query_facility_id", "sub:facility"},
		},
		ColAttributes: {
			Path:   "/services/v4x0/attributes",
			Shapes: []string{"query_facility_id", "sub:facility"},
		},
		ColContacts: {
			Path:   "/services/v4x0/contact-data",
			Shapes: []string{"query_facility_id"},
		},
		ColMethods: {
			Path:   "/services/v4x0/methods",
			Shapes: []string{"query_facility_id"},
		},
		ColStatus: {
			Path:        "/rest/v1/operation/status",
			Shapes:      []string{"sub:facility", "query_facility_id"},
			LocaleAware: true,
		},
		ColDeviceStatus: {
			Path:   "/rest/v1/operation/device-status",
			Shapes: []string{"query_facility_id"},
		},
		ColFiles: {
			// query_facility_id serves attachment listings per facility;
			// single-file fetches match on the earlier shapes.
			Path:   "/services/v4x0/filecontent",
			Shapes: []string{"path_suffix", "query_id", "query_facility_id"},
		},
		ColChargingStations: {
			Path:        "/services/v4x0/charging-stations",
			Shapes:      []string{"path_suffix", "query_id", "odata_filter"},
			LocaleAware: true,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: PARKGATE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Upstream — credentials should come from the environment in production.
	if v := os.Getenv("PARKGATE_UPSTREAM_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("PARKGATE_UPSTREAM_USERNAME"); v != "" {
		cfg.Upstream.Username = v
	}
	if v := os.Getenv("PARKGATE_UPSTREAM_PASSWORD"); v != "" {
		cfg.Upstream.Password = v
	}
	if v := os.Getenv("PARKGATE_UPSTREAM_LOCALE"); v != "" {
		cfg.Upstream.Locale = v
	}

	// API
	if v := os.Getenv("PARKGATE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("PARKGATE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Logging
	if v := os.Getenv("PARKGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Upstream.BaseURL == "" {
		errs = append(errs, "upstream.base_url is required")
	} else if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		errs = append(errs, "upstream.base_url must be an http(s) URL")
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, "upstream.timeout must be positive")
	}
	for name, col := range c.Upstream.Collections {
		if col.Path == "" {
			errs = append(errs, fmt.Sprintf("upstream.collections.%s.path is required", name))
		}
		if len(col.Shapes) == 0 {
			errs = append(errs, fmt.Sprintf("upstream.collections.%s.shapes must not be empty", name))
		}
	}

	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 0 and 65535")
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			errs = append(errs, "cache.ttl must be positive when cache is enabled")
		}
		if c.Cache.Size <= 0 {
			errs = append(errs, "cache.size must be positive when cache is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Collection returns the configuration for a named collection.
// The boolean is false when the collection is not configured.
func (c *Config) Collection(name string) (CollectionConfig, bool) {
	col, ok := c.Upstream.Collections[name]
	return col, ok
}

// GetTimeout returns the per-call upstream timeout as a Duration.
func (u UpstreamConfig) GetTimeout() time.Duration {
	return time.Duration(u.Timeout) * time.Second
}

// GetTTL returns the cache entry lifetime as a Duration.
func (c CacheConfig) GetTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// GetReadTimeout returns the HTTP read timeout as a Duration.
func (a APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(a.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the HTTP write timeout as a Duration.
func (a APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(a.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the HTTP idle timeout as a Duration.
func (a APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(a.Timeouts.Idle) * time.Second
}
