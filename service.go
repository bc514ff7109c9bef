package transferkit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gobeaver/beaver-kit/config"
)

// Global instance
var (
	defaultFS   FileSystem
	defaultOnce sync.Once
	defaultErr  error
)

// Builder provides a way to create FileSystem instances with custom prefixes
type Builder struct {
	prefix string
}

// WithEnvPrefix creates a new Builder that loads config with the given
// environment variable prefix
func WithEnvPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global FileSystem instance using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new FileSystem instance using the builder's prefix
func (b *Builder) New() (FileSystem, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return New(cfg)
}

// Init initializes the global storage client instance
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultFS, defaultErr = New(cfg)
	})

	return defaultErr
}

// New creates a new storage client with the given config.
// Configuration is validated before any backend client is constructed, so
// an unknown backend kind or a missing required option never results in a
// connection attempt.
func New(cfg *Config) (FileSystem, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	fs, err := CreateDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	return fs, nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg.Backend == "" {
		return &ConfigError{Err: errors.New("backend is required")}
	}

	switch cfg.Backend {
	case BackendDataLake:
		if cfg.DataLakeAccountName == "" && cfg.DataLakeEndpoint == "" {
			return &ConfigError{
				Backend: cfg.Backend,
				Option:  "account name",
				Err:     errors.New("account name or endpoint is required"),
			}
		}
		if cfg.DataLakeFileSystem == "" {
			return &ConfigError{
				Backend: cfg.Backend,
				Option:  "filesystem",
				Err:     errors.New("file system name is required"),
			}
		}
	case BackendNetShare:
		if cfg.ShareBasePath == "" {
			return &ConfigError{
				Backend: cfg.Backend,
				Option:  "base path",
				Err:     errors.New("base path is required"),
			}
		}
	case BackendMemory:
		// No required options
	default:
		return &ConfigError{
			Backend: cfg.Backend,
			Err:     fmt.Errorf("unknown backend"),
		}
	}

	return nil
}

// FS returns the global storage client instance
func FS() FileSystem {
	if defaultFS == nil {
		_ = Init()
	}
	return defaultFS
}

// Default returns the global instance, initializing if needed with error handling
func Default() (FileSystem, error) {
	if defaultFS == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultFS, nil
}

// NewFromEnv creates instance from environment variables (convenience constructor)
func NewFromEnv() (FileSystem, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// Reset clears the global instance (for testing)
func Reset() {
	defaultFS = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
