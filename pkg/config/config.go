// Package config loads the stackbundle configuration.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (stackbundle.toml)
//  3. STACKBUNDLE_* environment variables, optionally seeded from a .env file
//
// Repositories and the certificate/install flags are passed through to the
// external artifact resolver; stackbundle itself never contacts them.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/stackbundle/pkg/errors"
	"github.com/matzehuels/stackbundle/pkg/versionrange"
)

// FileName is the conventional configuration file name.
const FileName = "stackbundle.toml"

// DefaultSharedResourcePaths are the archive prefixes re-bundled from shared
// dependencies when IncludeSharedResources is on.
var DefaultSharedResourcePaths = []string{"META-INF/services/"}

// Cache and store backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the complete stackbundle configuration.
type Config struct {
	CheckCertificates          bool     `toml:"check_certificates"`
	InstallMissingDependencies bool     `toml:"install_missing_dependencies"`
	IncludeSharedResources     bool     `toml:"include_shared_resources"`
	SharedResourcePaths        []string `toml:"shared_resource_paths"`
	Repositories               []string `toml:"repositories"`
	VersionDigits              int      `toml:"version_digits"`
	WorkDir                    string   `toml:"work_dir"`

	Cache CacheConfig `toml:"cache"`
	Store StoreConfig `toml:"store"`
}

// CacheConfig selects where resolved trees are cached.
type CacheConfig struct {
	Backend   string   `toml:"backend"` // file, redis or none
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// StoreConfig selects where resolution reports are persisted.
type StoreConfig struct {
	Backend  string `toml:"backend"` // file, mongo or none
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Duration is a time.Duration written as a Go duration string ("12h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CheckCertificates:   true,
		SharedResourcePaths: append([]string(nil), DefaultSharedResourcePaths...),
		VersionDigits:       versionrange.Minor,
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{24 * time.Hour},
		},
		Store: StoreConfig{
			Backend:  BackendFile,
			Database: "stackbundle",
		},
	}
}

// WithDefaults fills unset fields that have no meaningful zero value.
func (c *Config) WithDefaults() *Config {
	def := Default()
	if len(c.SharedResourcePaths) == 0 {
		c.SharedResourcePaths = def.SharedResourcePaths
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = def.Cache.Backend
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL = def.Cache.TTL
	}
	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	if c.Store.Database == "" {
		c.Store.Database = def.Store.Database
	}
	return c
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the environment. envFiles are loaded with godotenv
// first; missing env files are ignored. The result is validated.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "loading %s", f)
		}
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.WithDefaults()
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks the configuration for semantic correctness and returns
// every problem found.
func (c *Config) Validate() []string {
	var errs []string

	if c.VersionDigits < versionrange.Exact || c.VersionDigits > versionrange.Unbounded {
		errs = append(errs, fmt.Sprintf("version_digits must be between %d and %d, got %d",
			versionrange.Exact, versionrange.Unbounded, c.VersionDigits))
	}

	for i, repo := range c.Repositories {
		if err := errors.ValidateURL(repo); err != nil {
			errs = append(errs, fmt.Sprintf("repositories[%d]: %s", i, errors.UserMessage(err)))
		}
	}
	for i, p := range c.SharedResourcePaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Sprintf("shared_resource_paths[%d]: empty prefix", i))
		} else if err := errors.ValidatePath(p); err != nil {
			errs = append(errs, fmt.Sprintf("shared_resource_paths[%d]: %s", i, errors.UserMessage(err)))
		}
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, "cache: 'redis_addr' is required for the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache: unknown backend %q (want file, redis or none)", c.Cache.Backend))
	}
	if c.Cache.TTL.Duration < 0 {
		errs = append(errs, "cache: ttl must not be negative")
	}

	switch c.Store.Backend {
	case BackendNone, BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, "store: 'mongo_uri' is required for the mongo backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("store: unknown backend %q (want file, mongo or none)", c.Store.Backend))
	}

	return errs
}
