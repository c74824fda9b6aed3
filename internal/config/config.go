package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/timmy/batchpub/internal/logger"
	"github.com/timmy/batchpub/internal/publisher"
	"github.com/timmy/batchpub/internal/sheet"
	"github.com/timmy/batchpub/internal/storage"
)

type Config struct {
	Sheet     SheetConfig     `mapstructure:"sheet"`
	Media     MediaConfig     `mapstructure:"media"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Run       RunConfig       `mapstructure:"run"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

type SheetConfig struct {
	Path                string        `mapstructure:"path"`
	Name                string        `mapstructure:"name"`
	Columns             ColumnsConfig `mapstructure:"columns"`
	IdentifierFallbacks []string      `mapstructure:"identifier_fallbacks"`
}

// ColumnsConfig holds the header labels of each semantic field.
type ColumnsConfig struct {
	TitlePrimary         string `mapstructure:"title_primary"`
	TitleSecondary       string `mapstructure:"title_secondary"`
	DescriptionPrimary   string `mapstructure:"description_primary"`
	DescriptionSecondary string `mapstructure:"description_secondary"`
	Tags                 string `mapstructure:"tags"`
	Hashtags             string `mapstructure:"hashtags"`
	Identifier           string `mapstructure:"identifier"`
	Status               string `mapstructure:"status"`
}

type MediaConfig struct {
	Dir           string   `mapstructure:"dir"`
	Extensions    []string `mapstructure:"extensions"`
	ThumbnailsDir string   `mapstructure:"thumbnails_dir"`
}

type PublisherConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryWait     time.Duration `mapstructure:"retry_wait"`
	RatePerMinute float64       `mapstructure:"rate_per_minute"`
	Privacy       string        `mapstructure:"privacy"`
}

type RunConfig struct {
	Simulate      bool `mapstructure:"simulate"`
	SkipCompleted bool `mapstructure:"skip_completed"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// DatabaseConfig configures the optional run history.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"` // sqlite or postgres
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	FileOnly   bool   `mapstructure:"file_only"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// New builds a viper instance with defaults, the config file and env overrides.
// Callers may bind command-line flags on it before calling Decode.
func New(configPath string) (*viper.Viper, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	_ = v.BindEnv("publisher.api_key", "PUBLISHER_API_KEY")
	_ = v.BindEnv("publisher.base_url", "PUBLISHER_BASE_URL")
	_ = v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	_ = v.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	_ = v.BindEnv("storage.secret_key", "S3_SECRET_KEY")
	_ = v.BindEnv("storage.region", "S3_REGION")
	_ = v.BindEnv("database.dsn", "DATABASE_URL")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.format", "LOG_FORMAT")

	return v, nil
}

func setDefaults(v *viper.Viper) {
	labels := sheet.DefaultLabels()
	v.SetDefault("sheet.name", "")
	v.SetDefault("sheet.columns.title_primary", labels.Columns[sheet.FieldTitlePrimary])
	v.SetDefault("sheet.columns.title_secondary", labels.Columns[sheet.FieldTitleSecondary])
	v.SetDefault("sheet.columns.description_primary", labels.Columns[sheet.FieldDescriptionPrimary])
	v.SetDefault("sheet.columns.description_secondary", labels.Columns[sheet.FieldDescriptionSecondary])
	v.SetDefault("sheet.columns.tags", labels.Columns[sheet.FieldTags])
	v.SetDefault("sheet.columns.hashtags", labels.Columns[sheet.FieldHashtags])
	v.SetDefault("sheet.columns.identifier", labels.Columns[sheet.FieldIdentifier])
	v.SetDefault("sheet.columns.status", labels.Columns[sheet.FieldStatus])
	v.SetDefault("sheet.identifier_fallbacks", labels.IdentifierFallbacks)

	v.SetDefault("media.dir", "./media")
	v.SetDefault("media.extensions", []string{})
	v.SetDefault("media.thumbnails_dir", "")

	v.SetDefault("schedule.mode", "immediate")
	v.SetDefault("schedule.interval_minutes", 60)
	v.SetDefault("schedule.daily.time", "09:00")
	v.SetDefault("schedule.daily.per_day", 1)
	v.SetDefault("schedule.daily.spacing_minutes", 0)
	v.SetDefault("schedule.timezone", "")

	v.SetDefault("publisher.timeout", "10m")
	v.SetDefault("publisher.retry_count", 3)
	v.SetDefault("publisher.retry_wait", "2s")
	v.SetDefault("publisher.rate_per_minute", 0)
	v.SetDefault("publisher.privacy", "private")

	v.SetDefault("run.simulate", false)
	v.SetDefault("run.skip_completed", false)

	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/history.db")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", false)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
}

// Decode unmarshals v into a Config.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Load reads configuration from configPath (or ./configs/config.yaml), .env and the environment.
func Load(configPath string) (*Config, error) {
	v, err := New(configPath)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// Labels converts the column settings into header resolver labels.
func (c SheetConfig) Labels() sheet.Labels {
	return sheet.Labels{
		Columns: map[sheet.Field]string{
			sheet.FieldTitlePrimary:         c.Columns.TitlePrimary,
			sheet.FieldTitleSecondary:       c.Columns.TitleSecondary,
			sheet.FieldDescriptionPrimary:   c.Columns.DescriptionPrimary,
			sheet.FieldDescriptionSecondary: c.Columns.DescriptionSecondary,
			sheet.FieldTags:                 c.Columns.Tags,
			sheet.FieldHashtags:             c.Columns.Hashtags,
			sheet.FieldIdentifier:           c.Columns.Identifier,
			sheet.FieldStatus:               c.Columns.Status,
		},
		IdentifierFallbacks: c.IdentifierFallbacks,
	}
}

// HTTP returns the HTTP publisher settings.
func (c PublisherConfig) HTTP() *publisher.HTTPConfig {
	return &publisher.HTTPConfig{
		BaseURL:    c.BaseURL,
		APIKey:     c.APIKey,
		Timeout:    c.Timeout,
		RetryCount: c.RetryCount,
		RetryWait:  c.RetryWait,
		Privacy:    c.Privacy,
	}
}

// S3 returns the object storage settings.
func (c StorageConfig) S3() *storage.S3Config {
	return &storage.S3Config{
		Type:      storage.StorageType(c.Type),
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		UseSSL:    c.UseSSL,
		Region:    c.Region,
	}
}

// Options returns the logger options, tagged with service.
func (c LogConfig) Options(service string) *logger.Options {
	return &logger.Options{
		Level:       c.Level,
		Format:      c.Format,
		ServiceName: service,
		File:        c.File,
		FileOnly:    c.FileOnly,
		MaxSizeMB:   c.MaxSizeMB,
		MaxBackups:  c.MaxBackups,
		MaxAgeDays:  c.MaxAgeDays,
		Compress:    c.Compress,
	}
}
