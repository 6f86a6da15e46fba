// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	Env      string `yaml:"env"`
	LogFile  string `yaml:"log_file"`

	StorageDriver string `yaml:"storage_driver"` // memory, file, postgres, redis
	StorageDir    string `yaml:"storage_dir"`
	StorageKey    string `yaml:"storage_key"`
	AuditKey      string `yaml:"audit_key"`
	StrictLoad    bool   `yaml:"strict_load"`

	Database DatabaseConfig `yaml:"database"`
	RedisURL string         `yaml:"redis_url"`
	AMQPURL  string         `yaml:"amqp_url"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Name     string `yaml:"name"`
}

// DSN returns URL when set, otherwise builds one from the individual parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

func (c *Config) Development() bool {
	return c.Env == "development"
}

func Default() *Config {
	return &Config{
		HTTPAddr:      ":8080",
		Env:           "production",
		StorageDriver: "file",
		StorageDir:    "./data",
		StorageKey:    "crm-users",
		AuditKey:      "crm-audit",
		Database: DatabaseConfig{
			Host: "localhost",
			Port: "5432",
		},
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), then applies environment variables on top.
func Load() (*Config, error) {
	// a missing .env is fine, the OS environment is used as-is
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.Env, "APP_ENV")
	setString(&c.LogFile, "LOG_FILE")
	setString(&c.StorageDriver, "STORAGE_DRIVER")
	setString(&c.StorageDir, "STORAGE_DIR")
	setString(&c.StorageKey, "STORAGE_KEY")
	setString(&c.AuditKey, "AUDIT_KEY")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.AMQPURL, "AMQP_URL")

	if v, ok := os.LookupEnv("STRICT_LOAD"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STRICT_LOAD: %w", err)
		}
		c.StrictLoad = b
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "memory", "file", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.StorageKey == "" {
		return fmt.Errorf("storage key must not be empty")
	}
	if c.StorageDriver == "redis" && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required for the redis storage driver")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
