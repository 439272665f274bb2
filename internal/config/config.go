// Package config handles loading and parsing application configuration.
// It supports these sources (later ones override earlier ones):
//  1. A .env file in the working directory (optional)
//  2. A YAML file given by CONFIG_PATH=/path/to/config.yaml or --config
//  3. Environment variables
//
// When neither CONFIG_PATH nor --config is set the configuration is read
// from the environment alone, which is how the app runs in containers.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Database drivers understood by Database.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Upload modes understood by Upload.Mode.
const (
	UploadModeLocal  = "local"
	UploadModeRemote = "remote"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	HTTPServer `yaml:"http_server"`
	Database   Database `yaml:"database"`
	Upload     Upload   `yaml:"upload"`
	S3         S3       `yaml:"s3"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
}

// Database selects and configures the record store.
type Database struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"storage/schools.db"`

	Host     string `yaml:"host"     env:"DB_HOST"     env-default:"localhost"`
	User     string `yaml:"user"     env:"DB_USER"     env-default:"schooluser"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"schoolpass"`
	Name     string `yaml:"name"     env:"DB_NAME"     env-default:"schools_db"`
	Port     int    `yaml:"port"     env:"DB_PORT"`

	// SSL turns on TLS for MySQL and Postgres connections.
	SSL bool `yaml:"ssl" env:"DB_SSL"`
}

// Upload selects where school images are written.
type Upload struct {
	Mode string `yaml:"mode" env:"UPLOAD_MODE" env-default:"local"`

	// Dir and URLPrefix are used in local mode only.
	Dir       string `yaml:"dir"        env:"UPLOAD_DIR"        env-default:"public/schoolImages"`
	URLPrefix string `yaml:"url_prefix" env:"UPLOAD_URL_PREFIX" env-default:"/schoolImages"`
}

// S3 configures the remote upload sink.
type S3 struct {
	Bucket          string `yaml:"bucket"            env:"S3_BUCKET"`
	Region          string `yaml:"region"            env:"S3_REGION" env-default:"us-east-1"`
	Endpoint        string `yaml:"endpoint"          env:"S3_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id"     env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `yaml:"public_base_url"   env:"S3_PUBLIC_BASE_URL"`
	KeyPrefix       string `yaml:"key_prefix"        env:"S3_KEY_PREFIX" env-default:"schoolImages/"`
}

// DefaultPort returns the conventional port for the configured driver
// when none was set.
func (d Database) DefaultPort() int {
	if d.Port != 0 {
		return d.Port
	}
	switch d.Driver {
	case DriverMySQL:
		return 3306
	case DriverPostgres:
		return 5432
	}
	return 0
}

// Validate reports configuration values that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.StoragePath) == "" {
			errs = append(errs, errors.New("database.storage_path is required for sqlite"))
		}
	case DriverMySQL, DriverPostgres:
		if strings.TrimSpace(c.Database.Name) == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	switch c.Upload.Mode {
	case UploadModeLocal:
		if strings.TrimSpace(c.Upload.Dir) == "" {
			errs = append(errs, errors.New("upload.dir is required in local mode"))
		}
	case UploadModeRemote:
		if strings.TrimSpace(c.S3.Bucket) == "" {
			errs = append(errs, errors.New("s3.bucket is required in remote mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown upload mode %q", c.Upload.Mode))
	}

	return errors.Join(errs...)
}

// Load reads the configuration from the YAML file at path (if path is
// non-empty) and from the environment, then validates it.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		// ReadConfig also applies env overrides and env-default values.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure: if
// this returns, the config is valid.
func MustLoad() *Config {
	// A missing .env is fine; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("cannot load .env: %s", err.Error())
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}
