// Package config builds the application configuration once at startup.
// Components never read the environment themselves.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. Every integration is optional:
// missing credentials disable the feature rather than failing startup.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Dev      DevConfig      `mapstructure:"dev"`
	OneDrive OneDriveConfig `mapstructure:"onedrive"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Mirror   MirrorConfig   `mapstructure:"mirror"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// StorageConfig holds local file storage configuration.
type StorageConfig struct {
	Root          string `mapstructure:"root"`
	EmployeesSeed string `mapstructure:"employees_seed"`
}

// DatabaseConfig selects and locates the record-log backend.
type DatabaseConfig struct {
	Backend string `mapstructure:"backend"` // excel or sqlite
	Path    string `mapstructure:"path"`
}

// CORSConfig holds the allowed origins; "*" allows everything.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DevConfig gates the developer endpoints. An empty token leaves the gate
// open, which is only sensible in local development.
type DevConfig struct {
	Token                string `mapstructure:"token"`
	ArchiveOlderThanDays int    `mapstructure:"archive_older_than_days"`
}

// OneDriveConfig holds the file-hosting mirror credentials.
type OneDriveConfig struct {
	TenantID     string `mapstructure:"tenant_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	DriveID      string `mapstructure:"drive_id"`
	BasePath     string `mapstructure:"base_path"`
}

// SupabaseConfig holds the managed-store mirror credentials.
type SupabaseConfig struct {
	URL    string `mapstructure:"url"`
	Key    string `mapstructure:"key"`
	Bucket string `mapstructure:"bucket"`
	Table  string `mapstructure:"table"`
}

// MirrorConfig bounds how long a submission waits on cloud replication.
type MirrorConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from an optional yaml file and the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; the env surface is enough to run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("storage.root", "./storage")
	v.SetDefault("storage.employees_seed", "data/employees_seed.csv")

	v.SetDefault("database.backend", "excel")
	v.SetDefault("database.path", "")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("dev.archive_older_than_days", 90)

	v.SetDefault("onedrive.drive_id", "me")
	v.SetDefault("onedrive.base_path", "/IncapacidadesUploads")

	v.SetDefault("supabase.bucket", "incapacidades")
	v.SetDefault("supabase.table", "incapacidades")

	v.SetDefault("mirror.timeout", 30*time.Second)
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("storage.root", "STORAGE_DIR")
	v.BindEnv("cors.allowed_origins", "CORS_ORIGINS")
	v.BindEnv("dev.token", "DEV_TOKEN")
	v.BindEnv("dev.archive_older_than_days", "ARCHIVE_OLDER_THAN_DAYS")
	v.BindEnv("onedrive.tenant_id", "MS_TENANT_ID")
	v.BindEnv("onedrive.client_id", "MS_CLIENT_ID")
	v.BindEnv("onedrive.client_secret", "MS_CLIENT_SECRET")
	v.BindEnv("onedrive.drive_id", "MS_ONEDRIVE_DRIVE_ID")
	v.BindEnv("onedrive.base_path", "MS_ONEDRIVE_BASE_PATH")
	v.BindEnv("supabase.url", "SUPABASE_URL")
	v.BindEnv("supabase.key", "SUPABASE_KEY")
	v.BindEnv("supabase.bucket", "SUPABASE_BUCKET")
}

// Validate checks the few settings that have constrained values.
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case "excel", "sqlite":
	default:
		return fmt.Errorf("database.backend must be excel or sqlite, got %q", c.Database.Backend)
	}
	if c.Dev.ArchiveOlderThanDays < 0 {
		return fmt.Errorf("dev.archive_older_than_days must not be negative")
	}
	return nil
}

// DatabasePath returns the configured store path, defaulting to a file under
// the storage root that matches the selected backend.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	name := "incapacidades.xlsx"
	if c.Database.Backend == "sqlite" {
		name = "incapacidades.db"
	}
	return fmt.Sprintf("%s/database/%s", strings.TrimRight(c.Storage.Root, "/"), name)
}

// Origins normalizes the CORS list: env values may arrive comma-separated.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range c.CORS.AllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
