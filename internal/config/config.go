// Package config loads the server and CLI configuration.
//
// Priority: env > file > defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/iudanet/gophdraw/internal/conflict"
	"github.com/iudanet/gophdraw/internal/models"
)

// Storage drivers
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// envPrefix - префикс переменных окружения
const envPrefix = "GOPHDRAW_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Resolver ResolverConfig `yaml:"resolver"`
	VCS      VCSConfig      `yaml:"vcs"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// WriteRate - число изменяющих запросов с одного клиента за WriteWindow, 0 - без лимита
	WriteRate   int           `yaml:"write_rate"`
	WriteWindow time.Duration `yaml:"write_window"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"` // bolt | sqlite | memory
	Path   string `yaml:"path"`
}

// ResolverConfig contains conflict manager settings.
type ResolverConfig struct {
	// Priorities ключ - UUID автора, значение - приоритет (больше - важнее)
	Priorities             map[string]int            `yaml:"priorities"`
	DefaultStrategy        models.ResolutionStrategy `yaml:"default_strategy"`
	AutoResolveLowSeverity bool                      `yaml:"auto_resolve_low_severity"`
}

// VCSConfig contains version graph limits.
type VCSConfig struct {
	MaxTraversal int `yaml:"max_traversal"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":8080",
			WriteRate:   600,
			WriteWindow: time.Minute,
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "gophdraw.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Resolver: ResolverConfig{
			Priorities:             map[string]int{},
			DefaultStrategy:        models.StrategyLastWriteWins,
			AutoResolveLowSeverity: true,
		},
		VCS: VCSConfig{
			MaxTraversal: 100_000,
		},
	}
}

// Load reads the configuration from path (optional, may be empty),
// applies GOPHDRAW_* env overrides and validates the result.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv(envPrefix + "ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(envPrefix + "WRITE_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sWRITE_RATE: %v", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Server.WriteRate = n
	}
	if v := os.Getenv(envPrefix + "STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv(envPrefix + "STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(envPrefix + "DEFAULT_STRATEGY"); v != "" {
		cfg.Resolver.DefaultStrategy = models.ResolutionStrategy(v)
	}
	if v := os.Getenv(envPrefix + "AUTO_RESOLVE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sAUTO_RESOLVE: %v", ErrInvalidConfig, envPrefix, err)
		}
		cfg.Resolver.AutoResolveLowSeverity = b
	}
	if v := os.Getenv(envPrefix + "MAX_TRAVERSAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_TRAVERSAL: %v", ErrInvalidConfig, envPrefix, err)
		}
		cfg.VCS.MaxTraversal = n
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(envPrefix + "LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.WriteRate < 0 {
		errs = append(errs, errors.New("server.write_rate must not be negative"))
	}
	if c.Server.WriteRate > 0 && c.Server.WriteWindow <= 0 {
		errs = append(errs, errors.New("server.write_window must be positive when write_rate is set"))
	}

	switch c.Storage.Driver {
	case DriverBolt, DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for driver %s", c.Storage.Driver))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	switch strategy := c.Resolver.DefaultStrategy; {
	case !strategy.Valid():
		errs = append(errs, fmt.Errorf("unknown resolver.default_strategy %q", strategy))
	case strategy.MergeOnly():
		errs = append(errs, fmt.Errorf("resolver.default_strategy %q applies only to merges", strategy))
	}
	if _, err := c.Resolver.actorPriorities(); err != nil {
		errs = append(errs, err)
	}

	if c.VCS.MaxTraversal <= 0 {
		errs = append(errs, errors.New("vcs.max_traversal must be positive"))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ConflictConfig converts the resolver section into conflict.Config.
func (c *Config) ConflictConfig() (conflict.Config, error) {
	priorities, err := c.Resolver.actorPriorities()
	if err != nil {
		return conflict.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return conflict.Config{
		Priorities:             priorities,
		DefaultStrategy:        c.Resolver.DefaultStrategy,
		AutoResolveLowSeverity: c.Resolver.AutoResolveLowSeverity,
	}, nil
}

func (r ResolverConfig) actorPriorities() (conflict.Priorities, error) {
	priorities := make(conflict.Priorities, len(r.Priorities))
	for key, p := range r.Priorities {
		actor, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("resolver.priorities: invalid actor id %q: %w", key, err)
		}
		priorities[actor] = p
	}
	return priorities, nil
}

// NewLogger builds a slog logger writing to stderr.
func (c *Config) NewLogger() *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}

	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("unknown log.level %q", s)
	}
	return level, nil
}
