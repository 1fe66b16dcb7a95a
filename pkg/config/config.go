package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-consensus/pkg/validation"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// AuthConfig holds API authentication settings. Auth is enabled when a
// secret is configured; health and metrics endpoints stay open either way.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// EngineConfig holds default timings handed to clusters that do not
// declare their own. Both are advisory; the engine never schedules on them.
type EngineConfig struct {
	ElectionTimeout   time.Duration `yaml:"election_timeout"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the daemon configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the default daemon configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20, // 1MB
		},
		Auth: AuthConfig{
			Secret:   "",
			TokenTTL: 1 * time.Hour,
		},
		Engine: EngineConfig{
			ElectionTimeout:   1500 * time.Millisecond,
			HeartbeatInterval: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing path is
// not an error; callers can run on defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.ApplyDefaults()
	cfg.ApplyEnv()
	return &cfg, nil
}

// ApplyEnv applies environment variable overrides. Environment wins
// over the config file (Railway-style deployment convention).
func (c *Config) ApplyEnv() {
	if envPort := os.Getenv("PORT"); envPort != "" {
		if p, err := strconv.Atoi(envPort); err == nil {
			c.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if secret := os.Getenv("CONSENSUS_AUTH_SECRET"); secret != "" {
		c.Auth.Secret = secret
	}
}

// ApplyDefaults applies default values to zero-valued fields
func (c *Config) ApplyDefaults() {
	defaults := Default()

	c.Server.Port = validation.DefaultOrInt(c.Server.Port, defaults.Server.Port)
	c.Server.ReadTimeout = validation.DefaultOrDuration(c.Server.ReadTimeout, defaults.Server.ReadTimeout)
	c.Server.WriteTimeout = validation.DefaultOrDuration(c.Server.WriteTimeout, defaults.Server.WriteTimeout)
	c.Server.IdleTimeout = validation.DefaultOrDuration(c.Server.IdleTimeout, defaults.Server.IdleTimeout)
	c.Server.ShutdownTimeout = validation.DefaultOrDuration(c.Server.ShutdownTimeout, defaults.Server.ShutdownTimeout)
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}
	c.Auth.TokenTTL = validation.DefaultOrDuration(c.Auth.TokenTTL, defaults.Auth.TokenTTL)
	c.Engine.ElectionTimeout = validation.DefaultOrDuration(c.Engine.ElectionTimeout, defaults.Engine.ElectionTimeout)
	c.Engine.HeartbeatInterval = validation.DefaultOrDuration(c.Engine.HeartbeatInterval, defaults.Engine.HeartbeatInterval)
	c.Log.Level = validation.DefaultOr(c.Log.Level, defaults.Log.Level)
}

// Validate validates the daemon configuration
func (c *Config) Validate() error {
	v := validation.NewConfigValidator("Config")

	v.RangeInt("Server.Port", c.Server.Port, 1, 65535).
		MinDuration("Server.ReadTimeout", c.Server.ReadTimeout, 1*time.Second).
		MinDuration("Server.WriteTimeout", c.Server.WriteTimeout, 1*time.Second).
		MinDuration("Server.ShutdownTimeout", c.Server.ShutdownTimeout, 1*time.Second).
		MinInt("Server.MaxBodyBytes", int(c.Server.MaxBodyBytes), 1024)

	v.OneOf("Log.Level", c.Log.Level, []string{"debug", "info", "warn", "error"})

	// Auth is optional, but a configured secret must meet the JWT
	// manager's minimum length
	v.When(c.AuthEnabled(), func(cv *validation.ConfigValidator) {
		cv.Custom("Auth.Secret", func() error {
			if len(c.Auth.Secret) < 32 {
				return fmt.Errorf("must be at least 32 characters, got %d", len(c.Auth.Secret))
			}
			return nil
		}).MinDuration("Auth.TokenTTL", c.Auth.TokenTTL, 1*time.Minute)
	})

	v.MinDuration("Engine.HeartbeatInterval", c.Engine.HeartbeatInterval, 10*time.Millisecond).
		Custom("Engine.ElectionTimeout", func() error {
			if c.Engine.ElectionTimeout <= c.Engine.HeartbeatInterval {
				return fmt.Errorf("must be greater than heartbeat interval %v", c.Engine.HeartbeatInterval)
			}
			return nil
		})

	return v.Validate()
}

// AuthEnabled reports whether API authentication is configured
func (c *Config) AuthEnabled() bool {
	return c.Auth.Secret != ""
}
