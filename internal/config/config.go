package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/hyperengineering/nurture/internal/catalog"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "NURTURE_"

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Selection SelectionConfig `yaml:"selection"`
	Worker    WorkerConfig    `yaml:"worker"`
	Log       LogConfig       `yaml:"log"`

	// DevMode relaxes the secret requirement. Env-only.
	DevMode bool `yaml:"-" env:"DEV_MODE"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port" env:"PORT"`
	ReadTimeout     Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DB_PATH"`
}

// AuthConfig contains session settings.
type AuthConfig struct {
	Secret     string   `yaml:"-" env:"JWT_SECRET"` // env-only, never in YAML
	Issuer     string   `yaml:"issuer" env:"JWT_ISSUER"`
	TokenTTL   Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	CodeResend Duration `yaml:"code_resend_cooldown" env:"CODE_RESEND_COOLDOWN"`
	LoginDelay Duration `yaml:"login_delay" env:"LOGIN_DELAY"`
}

// CatalogConfig selects and tunes the reference catalogs.
type CatalogConfig struct {
	DefaultMilestones string                    `yaml:"default_milestones" env:"CATALOG_DEFAULT_MILESTONES"`
	OverrideDir       string                    `yaml:"override_dir" env:"CATALOG_DIR"`
	Watch             bool                      `yaml:"watch" env:"CATALOG_WATCH"`
	Policies          map[string]catalog.Policy `yaml:"policies"`
}

// SelectionConfig contains content selection settings.
type SelectionConfig struct {
	MedicalVisibilityMonths int `yaml:"medical_visibility_months" env:"MEDICAL_VISIBILITY_MONTHS"`
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	ChallengeSweepInterval Duration `yaml:"challenge_sweep_interval" env:"CHALLENGE_SWEEP_INTERVAL"`
	ChallengeMaxAge        Duration `yaml:"challenge_max_age" env:"CHALLENGE_MAX_AGE"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Duration is a wrapper around time.Duration that supports YAML and env string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv(EnvPrefix+"CONFIG_PATH", "config/nurture.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	return finish(cfg)
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/nurture.db",
		},
		Auth: AuthConfig{
			Issuer:     "nurture",
			TokenTTL:   Duration(30 * 24 * time.Hour),
			CodeResend: Duration(60 * time.Second),
			LoginDelay: Duration(1500 * time.Millisecond),
		},
		Catalog: CatalogConfig{
			DefaultMilestones: catalog.EnhancedMilestones,
		},
		Selection: SelectionConfig{
			MedicalVisibilityMonths: 3,
		},
		Worker: WorkerConfig{
			ChallengeSweepInterval: Duration(10 * time.Minute),
			ChallengeMaxAge:        Duration(1 * time.Hour),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies NURTURE_* environment variables to cfg.
// Unset variables leave the current value in place.
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// validate checks that required configuration values are set.
// In dev mode (NURTURE_DEV_MODE=true), the JWT secret check is skipped.
func (c *Config) validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.CodeResend < 0 || c.Auth.LoginDelay < 0 {
		errs = append(errs, errors.New("auth durations must not be negative"))
	}
	if c.Selection.MedicalVisibilityMonths < 0 {
		errs = append(errs, errors.New("selection.medical_visibility_months must not be negative"))
	}
	if c.Worker.ChallengeSweepInterval <= 0 || c.Worker.ChallengeMaxAge <= 0 {
		errs = append(errs, errors.New("worker challenge durations must be positive"))
	}
	for name, p := range c.Catalog.Policies {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("catalog.policies[%s]: %w", name, err))
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or text", c.Log.Format))
	}

	if !c.DevMode && c.Auth.Secret == "" {
		errs = append(errs, errors.New(EnvPrefix+"JWT_SECRET is required"))
	}
	return errors.Join(errs...)
}

// SigningSecret returns the JWT secret, or a fixed development secret
// in dev mode when none is set.
func (c *Config) SigningSecret() []byte {
	if c.Auth.Secret == "" && c.DevMode {
		return []byte("nurture-dev-secret")
	}
	return []byte(c.Auth.Secret)
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
