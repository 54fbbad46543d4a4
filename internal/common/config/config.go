package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Development-only fallbacks. Anything user-facing must override them via
// config file or environment.
const (
	DefaultSessionSecret = "dev-secret-key"
	DefaultAdminPassword = "admin"
)

// Config holds the full application configuration. It is constructed once in
// main and passed down explicitly; packages never reach for ambient state.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Log      LogConfig      `json:"log"`
}

type ServerConfig struct {
	Name string `json:"name"` // service name (Consul registration, tracing)
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseConfig selects and parameterizes the record store backend.
// Driver is one of "mysql", "stoolap", "memory".
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	DSN      string `json:"dsn"` // stoolap only: memory:// or file://<path>
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

// AuthConfig carries the two process-wide secrets: the key signing session
// cookies and the single shared admin password.
type AuthConfig struct {
	SessionSecret string `json:"session_secret"`
	AdminPassword string `json:"admin_password"`
}

type ConsulConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 0.0-1.0
}

type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`
}

// LoadConfig reads the JSON config file, falling back to defaults when the
// file does not exist. SESSION_SECRET and ADMIN_PASSWORD environment
// variables override the file values so secrets can stay out of it.
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logrus.Warnf("Config file not found: %s, using default config", configPath)
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}

	return cfg, nil
}

// InsecureDefaults lists which secrets are still on their development
// placeholder so main can warn loudly at startup.
func (c *Config) InsecureDefaults() []string {
	var out []string
	if c.Auth.SessionSecret == DefaultSessionSecret {
		out = append(out, "session_secret")
	}
	if c.Auth.AdminPassword == DefaultAdminPassword {
		out = append(out, "admin_password")
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "workorder-service",
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "memory",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "workorders",
			DSN:      "memory://",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Auth: AuthConfig{
			SessionSecret: DefaultSessionSecret,
			AdminPassword: DefaultAdminPassword,
		},
		Consul: ConsulConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
