// Package config loads runtime settings. Values come from the YAML file
// first, then from a .env file, and finally from the process environment,
// each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Alexistodj124/kiarasoftwareback/internal/kiara/db"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing default
// file is not an error; settings then come from the environment alone.
const DefaultPath = "config/config.yaml"

var envFile = ".env"

// Config struct for YAML configuration
type Config struct {
	HTTPPort     int      `yaml:"HTTP_PORT"`
	DBDriver     string   `yaml:"DB_DRIVER"`
	DBHost       string   `yaml:"DB_HOST"`
	DBPort       int      `yaml:"DB_PORT"`
	DBUser       string   `yaml:"DB_USER"`
	DBPassword   string   `yaml:"DB_PASSWORD"`
	DBName       string   `yaml:"DB_NAME"`
	DBSSLMode    string   `yaml:"DB_SSLMODE"`
	DBDSN        string   `yaml:"DB_DSN"`
	JWTSecret    string   `yaml:"JWT_SECRET"`
	AuthRequired bool     `yaml:"AUTH_REQUIRED"`
	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC"`
	LogLevel     string   `yaml:"LOG_LEVEL"`
	LogFile      string   `yaml:"LOG_FILE"`
	GinMode      string   `yaml:"GIN_MODE"`
}

// Default returns the settings used for keys nobody sets.
func Default() *Config {
	return &Config{
		HTTPPort:  8080,
		DBDriver:  db.DriverPostgres,
		DBHost:    "localhost",
		DBPort:    5432,
		DBSSLMode: "disable",
		Topic:     "kiara.ordenes",
		LogLevel:  "info",
		GinMode:   "release",
	}
}

// Load reads path (when non-empty), then .env, then the environment, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	// godotenv never overrides variables already present in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for key, dst := range map[string]*string{
		"DB_DRIVER":   &c.DBDriver,
		"DB_HOST":     &c.DBHost,
		"DB_USER":     &c.DBUser,
		"DB_PASSWORD": &c.DBPassword,
		"DB_NAME":     &c.DBName,
		"DB_SSLMODE":  &c.DBSSLMode,
		"DB_DSN":      &c.DBDSN,
		"JWT_SECRET":  &c.JWTSecret,
		"TOPIC":       &c.Topic,
		"LOG_LEVEL":   &c.LogLevel,
		"LOG_FILE":    &c.LogFile,
		"GIN_MODE":    &c.GinMode,
	} {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	for key, dst := range map[string]*int{
		"HTTP_PORT": &c.HTTPPort,
		"DB_PORT":   &c.DBPort,
	} {
		if v, ok := lookup(key); ok {
			n, err := cast.ToIntE(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup("AUTH_REQUIRED"); ok {
		b, err := cast.ToBoolE(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid AUTH_REQUIRED %q: %w", v, err)
		}
		c.AuthRequired = b
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.KafkaBrokers = splitList(v)
	}
	return nil
}

// splitList parses a comma separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	switch c.DBDriver {
	case db.DriverPostgres, db.DriverMySQL:
		if c.DBDSN == "" && (c.DBHost == "" || c.DBPort <= 0) {
			return fmt.Errorf("DB_HOST and DB_PORT are required for %s unless DB_DSN is set", c.DBDriver)
		}
	case db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AuthRequired && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_REQUIRED is true")
	}
	if len(c.KafkaBrokers) > 0 && c.Topic == "" {
		return errors.New("TOPIC is required when KAFKA_BROKERS is set")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported GIN_MODE %q", c.GinMode)
	}
	return nil
}

// DBConfig converts the database settings for db.Connect.
func (c *Config) DBConfig() *db.Config {
	return &db.Config{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
		DSN:      c.DBDSN,
	}
}

// KafkaEnabled reports whether order events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
