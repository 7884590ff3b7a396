package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Features FeaturesConfig `mapstructure:"features"`
	Research ResearchConfig `mapstructure:"research"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Search   SearchConfig   `mapstructure:"search"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type LoggerConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

type AuthConfig struct {
	// AdminAPIKey is either the raw admin token or a bcrypt hash of it
	// (recognised by the "$2" prefix, see cmd/keygen).
	AdminAPIKey    string   `mapstructure:"admin_api_key"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type FeaturesConfig struct {
	RequestIDHeader      string `mapstructure:"request_id_header"`
	EnableRequestLogging bool   `mapstructure:"enable_request_logging"`
}

type ResearchConfig struct {
	QueueSize     int           `mapstructure:"queue_size"`
	Workers       int           `mapstructure:"workers"`
	TaskTimeout   time.Duration `mapstructure:"task_timeout"`
	StaleAfter    time.Duration `mapstructure:"stale_after"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type LLMConfig struct {
	Fast    ChatBackendConfig `mapstructure:"fast"`
	Quality ChatBackendConfig `mapstructure:"quality"`
}

type ChatBackendConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	// Temperature is nil when unset so the backend default applies; an
	// explicit 0 is still sent.
	Temperature *float64      `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SearchConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CrawlerConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("DEALDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Research.QueueSize <= 0 {
		cfg.Research.QueueSize = 64
	}
	if cfg.Research.Workers <= 0 {
		cfg.Research.Workers = 4
	}
	if cfg.Research.TaskTimeout <= 0 {
		cfg.Research.TaskTimeout = 10 * time.Minute
	}
	if cfg.Research.StaleAfter <= 0 {
		cfg.Research.StaleAfter = 30 * time.Minute
	}
	if cfg.Research.SweepInterval <= 0 {
		cfg.Research.SweepInterval = 5 * time.Minute
	}
	if cfg.Search.BaseURL == "" {
		cfg.Search.BaseURL = "https://html.duckduckgo.com/html/"
	}
	if cfg.Search.Timeout <= 0 {
		cfg.Search.Timeout = 30 * time.Second
	}
	if cfg.Crawler.Timeout <= 0 {
		cfg.Crawler.Timeout = 60 * time.Second
	}
	if cfg.Crawler.MaxBodyBytes <= 0 {
		cfg.Crawler.MaxBodyBytes = 2 << 20
	}
	if cfg.LLM.Fast.Timeout <= 0 {
		cfg.LLM.Fast.Timeout = 60 * time.Second
	}
	if cfg.LLM.Quality.Timeout <= 0 {
		cfg.LLM.Quality.Timeout = 180 * time.Second
	}
}
