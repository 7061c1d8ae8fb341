// Package config loads the quill server configuration.
//
// Configuration comes from a single YAML file named by the --config flag or
// the QUILL_CONFIG environment variable. The file may contain development,
// staging and production sections that override base values when the
// environment matches. Secrets and connection strings may then be supplied
// through QUILL_* environment variables, which win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lborres/quill/core"
)

type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Environment variables read by Load and LoadFile.
const (
	EnvConfig      = "QUILL_CONFIG"
	EnvJWTSecret   = "QUILL_JWT_SECRET"
	EnvDatabaseURL = "QUILL_DATABASE_URL"
	EnvRedisAddr   = "QUILL_REDIS_ADDR"
	EnvListenAddr  = "QUILL_LISTEN_ADDR"
	EnvFrontendURL = "QUILL_FRONTEND_URL"
	EnvProxyHeader = "QUILL_PROXY_HEADER"
	EnvEnvironment = "QUILL_ENV"
)

const minSecretLength = 32

type Config struct {
	Environment Environment `yaml:"environment"`

	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	CSRF     CSRFConfig     `yaml:"csrf"`
	Redis    RedisConfig    `yaml:"redis"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`

	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains the fields that can be overridden per environment.
type Overrides struct {
	Server   *ServerConfig   `yaml:"server,omitempty"`
	Auth     *AuthConfig     `yaml:"auth,omitempty"`
	Database *DatabaseConfig `yaml:"database,omitempty"`
	Redis    *RedisConfig    `yaml:"redis,omitempty"`
	Log      *LogConfig      `yaml:"log,omitempty"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	BasePath   string `yaml:"base_path"`
	// FrontendURL is the single origin allowed to make credentialed requests.
	FrontendURL string `yaml:"frontend_url"`
	// ProxyHeader names the header carrying the client address when quill
	// runs behind a reverse proxy, e.g. X-Forwarded-For. It is only honored
	// for requests arriving from TrustedProxies.
	ProxyHeader    string   `yaml:"proxy_header"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type AuthConfig struct {
	JWTSecret     string             `yaml:"jwt_secret"`
	CredentialTTL time.Duration      `yaml:"credential_ttl"`
	AnonymousMode core.AnonymousMode `yaml:"anonymous_mode"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
	// Migrate applies the schema on serve startup.
	Migrate bool `yaml:"migrate"`
}

// CSRFConfig sizes the in-memory token store. When Redis.Addr is set the
// Redis store is used instead and only TTL applies.
type CSRFConfig struct {
	TTL     time.Duration `yaml:"ttl"`
	MaxSize int           `yaml:"max_size"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format: text or json.
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			ListenAddr:  ":8000",
			BasePath:    "/api",
			FrontendURL: "http://localhost:5173",
		},
		Auth: AuthConfig{
			CredentialTTL: 7 * 24 * time.Hour,
			AnonymousMode: core.AnonymousCookie,
		},
		CSRF: CSRFConfig{
			TTL:     7 * 24 * time.Hour,
			MaxSize: 10000,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the file named by QUILL_CONFIG. With no file configured it
// starts from Default, so a deployment can be driven by environment
// variables alone.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvConfig))
}

// LoadFile reads path (skipped when empty), applies the environment section
// and then the QUILL_* environment variables. The result is not validated.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// QUILL_ENV picks the override section, so it is read first.
	if env := os.Getenv(EnvEnvironment); env != "" {
		cfg.Environment = Environment(env)
	}
	cfg.applyEnvironmentOverrides()
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if o := overrides.Server; o != nil {
		setString(&c.Server.ListenAddr, o.ListenAddr)
		setString(&c.Server.BasePath, o.BasePath)
		setString(&c.Server.FrontendURL, o.FrontendURL)
		setString(&c.Server.ProxyHeader, o.ProxyHeader)
		if len(o.TrustedProxies) > 0 {
			c.Server.TrustedProxies = o.TrustedProxies
		}
	}
	if o := overrides.Auth; o != nil {
		setString(&c.Auth.JWTSecret, o.JWTSecret)
		if o.CredentialTTL != 0 {
			c.Auth.CredentialTTL = o.CredentialTTL
		}
		if o.AnonymousMode != "" {
			c.Auth.AnonymousMode = o.AnonymousMode
		}
	}
	if o := overrides.Database; o != nil {
		setString(&c.Database.URL, o.URL)
		c.Database.Migrate = o.Migrate
	}
	if o := overrides.Redis; o != nil {
		setString(&c.Redis.Addr, o.Addr)
		setString(&c.Redis.Password, o.Password)
		if o.DB != 0 {
			c.Redis.DB = o.DB
		}
	}
	if o := overrides.Log; o != nil {
		setString(&c.Log.Level, o.Level)
		setString(&c.Log.Format, o.Format)
	}
}

func (c *Config) applyEnv() {
	setString(&c.Auth.JWTSecret, os.Getenv(EnvJWTSecret))
	setString(&c.Database.URL, os.Getenv(EnvDatabaseURL))
	setString(&c.Redis.Addr, os.Getenv(EnvRedisAddr))
	setString(&c.Server.ListenAddr, os.Getenv(EnvListenAddr))
	setString(&c.Server.FrontendURL, os.Getenv(EnvFrontendURL))
	setString(&c.Server.ProxyHeader, os.Getenv(EnvProxyHeader))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case Development, Staging, Production:
	default:
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}

	switch {
	case c.Auth.JWTSecret == "":
		errs = append(errs, fmt.Errorf("auth.jwt_secret: %w", core.ErrSecretRequired))
	case len(c.Auth.JWTSecret) < minSecretLength:
		errs = append(errs, fmt.Errorf("auth.jwt_secret: %w (minimum of %d characters)", core.ErrSecretTooShort, minSecretLength))
	}
	if c.Auth.CredentialTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.credential_ttl: %w", core.ErrInvalidCredentialTTL))
	}
	if !c.Auth.AnonymousMode.Valid() {
		errs = append(errs, fmt.Errorf("auth.anonymous_mode: %w: %q", core.ErrInvalidAnonymousMode, c.Auth.AnonymousMode))
	}

	if c.Database.URL == "" {
		errs = append(errs, fmt.Errorf("database.url is required"))
	}

	if c.CSRF.TTL <= 0 {
		errs = append(errs, fmt.Errorf("csrf.ttl must be positive"))
	}
	if c.CSRF.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("csrf.max_size must be positive"))
	}

	if c.Server.ListenAddr == "" {
		errs = append(errs, fmt.Errorf("server.listen_addr is required"))
	}
	if c.Server.ProxyHeader != "" && len(c.Server.TrustedProxies) == 0 {
		errs = append(errs, fmt.Errorf("server.trusted_proxies is required when server.proxy_header is set"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level))
	}

	return errors.Join(errs...)
}
