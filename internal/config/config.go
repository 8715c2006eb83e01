package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Dashboard DashboardConfig `json:"dashboard" yaml:"dashboard"`
	Worker    WorkerConfig    `json:"worker" yaml:"worker"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host              string        `json:"host" yaml:"host"`
	Port              int           `json:"port" yaml:"port"`
	ReadTimeout       time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	AllowedOrigin     string        `json:"allowed_origin" yaml:"allowed_origin"`
	RequestsPerMinute int           `json:"requests_per_minute" yaml:"requests_per_minute"`
	Burst             int           `json:"burst" yaml:"burst"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host" yaml:"host"`
	Port           int           `json:"port" yaml:"port"`
	User           string        `json:"user" yaml:"user"`
	Password       string        `json:"password" yaml:"password"`
	DBName         string        `json:"db_name" yaml:"db_name"`
	SSLMode        string        `json:"ssl_mode" yaml:"ssl_mode"`
	MaxConnections int           `json:"max_connections" yaml:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
	EnablePostGIS  bool          `json:"enable_postgis" yaml:"enable_postgis"`
}

// LoggingConfig
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // json or console
}

// DashboardConfig tunes the dashboard feeds
type DashboardConfig struct {
	ActivityLimit  int `json:"activity_limit" yaml:"activity_limit"`
	MilestoneLimit int `json:"milestone_limit" yaml:"milestone_limit"`
	TopCultures    int `json:"top_cultures" yaml:"top_cultures"`
}

// WorkerConfig
type WorkerConfig struct {
	IntegritySchedule string `json:"integrity_schedule" yaml:"integrity_schedule"`
	AutoRepair        bool   `json:"auto_repair" yaml:"auto_repair"`
}

// StorageConfig controls archiving of generated exports
type StorageConfig struct {
	Enabled    bool          `json:"enabled" yaml:"enabled"`
	Bucket     string        `json:"bucket" yaml:"bucket"`
	Region     string        `json:"region" yaml:"region"`
	Prefix     string        `json:"prefix" yaml:"prefix"`
	PresignTTL time.Duration `json:"presign_ttl" yaml:"presign_ttl"`
	// Endpoint targets an S3-compatible server instead of AWS
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			AllowedOrigin:     "*",
			RequestsPerMinute: 300,
			Burst:             50,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "maintso_vola",
			SSLMode:        "disable",
			MaxConnections: 25,
			MaxIdleConns:   5,
			MaxLifetime:    30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Dashboard: DashboardConfig{
			ActivityLimit:  4,
			MilestoneLimit: 4,
			TopCultures:    4,
		},
		Worker: WorkerConfig{
			IntegritySchedule: "0 0 3 * * *",
		},
		Storage: StorageConfig{
			Region:     "eu-west-1",
			Prefix:     "exports",
			PresignTTL: 15 * time.Minute,
		},
	}
}

// LoadConfig loads configuration from .env, file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := decode(configPath, data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// decode reads YAML for .yaml/.yml files and JSON otherwise.
// Durations are nanoseconds in JSON and strings such as "15s" in YAML.
func decode(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required when archiving is enabled")
	}
	if c.Server.RequestsPerMinute < 0 {
		return fmt.Errorf("invalid requests_per_minute: %d", c.Server.RequestsPerMinute)
	}
	return nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if origin := os.Getenv("CORS_ALLOWED_ORIGIN"); origin != "" {
		config.Server.AllowedOrigin = origin
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		config.Database.SSLMode = sslMode
	}
	if postgis := os.Getenv("DATABASE_POSTGIS"); postgis != "" {
		if b, err := strconv.ParseBool(postgis); err == nil {
			config.Database.EnablePostGIS = b
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if schedule := os.Getenv("WORKER_SCHEDULE"); schedule != "" {
		config.Worker.IntegritySchedule = schedule
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
		config.Storage.Enabled = true
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		config.Storage.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
