// Package config defines the service configuration and its defaults.
package config

import (
	"errors"
	"fmt"
	"time"

	platformconfig "github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/platform/config"
)

// Default service configuration values.
const (
	defaultServiceName    = "yt-sentiment"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8080
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Default YouTube source configuration values.
const (
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultPageSize       = 100
	defaultFetchRPS       = 5
	defaultFetchBurst     = 5
	defaultFetchTimeout   = 15 * time.Second
)

// Default classifier configuration values.
const (
	defaultClassifierBackend = "lexicon"
	defaultClassifyTimeout   = 10 * time.Second
)

// Default pipeline configuration values.
const (
	defaultConcurrency = 8
)

// Default database configuration values.
const (
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "yt_sentiment"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultDBConnLifetimeH = 1
)

// Default Redis configuration values.
const (
	defaultRedisAddress = "localhost:6379"
	defaultVerdictTTL   = 24 * time.Hour
)

// Classifier backend names.
const (
	BackendLexicon = "lexicon"
	BackendRemote  = "remote"
)

// Config holds the application configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServiceConfig holds service identity and runtime settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"SERVICE_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"    yaml:"debug"`
}

// YouTubeConfig holds comment feed settings.
type YouTubeConfig struct {
	APIKey   string        `env:"YOUTUBE_API_KEY" yaml:"api_key"`
	BaseURL  string        `env:"YOUTUBE_API_URL" yaml:"base_url"`
	PageSize int           `yaml:"page_size"`
	// RPS and Burst pace outbound requests so bursts stay under the
	// per-second API quota.
	RPS     int           `yaml:"rps"`
	Burst   int           `yaml:"burst"`
	Timeout time.Duration `yaml:"timeout"`
}

// ClassifierConfig selects and configures the sentiment backend.
type ClassifierConfig struct {
	// Backend is "lexicon" (in-process) or "remote" (ML service).
	Backend     string        `env:"CLASSIFIER_BACKEND"    yaml:"backend"`
	LexiconPath string        `env:"CLASSIFIER_LEXICON"    yaml:"lexicon_path"`
	RemoteURL   string        `env:"CLASSIFIER_REMOTE_URL" yaml:"remote_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PipelineConfig holds orchestrator settings.
type PipelineConfig struct {
	// Concurrency bounds the classification worker pool within a page.
	Concurrency int `env:"PIPELINE_CONCURRENCY" yaml:"concurrency"`
	// FailFast aborts the run on the first classification failure instead
	// of skipping the comment and continuing.
	FailFast bool `env:"PIPELINE_FAIL_FAST" yaml:"fail_fast"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host                  string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port                  int           `env:"POSTGRES_PORT"     yaml:"port"`
	User                  string        `env:"POSTGRES_USER"     yaml:"user"`
	Password              string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database              string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode               string        `yaml:"sslmode"`
	MaxConnections        int           `yaml:"max_connections"`
	MaxIdleConns          int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// RedisConfig holds verdict cache settings. Redis is optional: an empty
// address disables the cache and existence checks fall through to Postgres.
type RedisConfig struct {
	Address    string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password   string        `env:"REDIS_PASSWORD" yaml:"password"`
	Database   int           `yaml:"database"`
	Enabled    bool          `yaml:"enabled"`
	VerdictTTL time.Duration `yaml:"verdict_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from a YAML file, applies defaults, then env
// overrides.
func Load(path string) (*Config, error) {
	cfg, loadErr := platformconfig.LoadWithDefaults(path, setDefaults)
	if loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("service.port %d out of range", c.Service.Port)
	}

	if c.YouTube.APIKey == "" {
		return errors.New("youtube.api_key is required")
	}

	if c.Classifier.Backend != BackendLexicon && c.Classifier.Backend != BackendRemote {
		return fmt.Errorf("classifier.backend %q must be %q or %q",
			c.Classifier.Backend, BackendLexicon, BackendRemote)
	}

	if c.Classifier.Backend == BackendRemote && c.Classifier.RemoteURL == "" {
		return errors.New("classifier.remote_url is required for the remote backend")
	}

	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}

	if c.Database.Database == "" {
		return errors.New("database.database is required")
	}

	return nil
}

// setDefaults applies default values to all configuration sections.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setYouTubeDefaults(&cfg.YouTube)
	setClassifierDefaults(&cfg.Classifier)
	setPipelineDefaults(&cfg.Pipeline)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setYouTubeDefaults(y *YouTubeConfig) {
	if y.BaseURL == "" {
		y.BaseURL = defaultYouTubeBaseURL
	}
	if y.PageSize == 0 {
		y.PageSize = defaultPageSize
	}
	if y.RPS == 0 {
		y.RPS = defaultFetchRPS
	}
	if y.Burst == 0 {
		y.Burst = defaultFetchBurst
	}
	if y.Timeout == 0 {
		y.Timeout = defaultFetchTimeout
	}
}

func setClassifierDefaults(c *ClassifierConfig) {
	if c.Backend == "" {
		c.Backend = defaultClassifierBackend
	}
	if c.Timeout == 0 {
		c.Timeout = defaultClassifyTimeout
	}
}

func setPipelineDefaults(p *PipelineConfig) {
	if p.Concurrency == 0 {
		p.Concurrency = defaultConcurrency
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnectionMaxLifetime == 0 {
		d.ConnectionMaxLifetime = defaultDBConnLifetimeH * time.Hour
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.VerdictTTL == 0 {
		r.VerdictTTL = defaultVerdictTTL
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
