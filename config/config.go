package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the talor research service
type Config struct {
	General  GeneralConfig  `mapstructure:"general"`
	Server   ServerConfig   `mapstructure:"server"`
	Gate     GateConfig     `mapstructure:"gate"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Research ResearchConfig `mapstructure:"research"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug     bool   `mapstructure:"debug"`
	LogLevel  string `mapstructure:"log_level"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// GateConfig drives the politeness gate: per-domain token buckets and robots
// handling. Domain lists share the normalization rules in gate_policy.go.
type GateConfig struct {
	RespectRobots bool          `mapstructure:"respect_robots"`
	UserAgent     string        `mapstructure:"user_agent"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	MaxWait       time.Duration `mapstructure:"max_wait"`
	RobotsTTL     time.Duration `mapstructure:"robots_ttl"`

	PerDomain map[string]DomainLimit `mapstructure:"per_domain"`
	Disallow  []string               `mapstructure:"disallow"`
}

// DomainLimit overrides the default bucket for one domain.
type DomainLimit struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// SourcesConfig contains the adapter registry configuration, keyed by source
// id so adapters can be added without touching the aggregator.
type SourcesConfig struct {
	UserAgent   string        `mapstructure:"user_agent"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	Retries     int           `mapstructure:"retries"`
	Backoff     time.Duration `mapstructure:"backoff"`

	Adapters map[string]AdapterConfig `mapstructure:"adapters"`
}

// AdapterConfig configures one source adapter.
type AdapterConfig struct {
	Enabled    bool              `mapstructure:"enabled"`
	Priority   int               `mapstructure:"priority"`
	Endpoint   string            `mapstructure:"endpoint"`
	APIKey     string            `mapstructure:"api_key"`
	MaxResults int               `mapstructure:"max_results"`
	Extra      map[string]string `mapstructure:"extra"`
}

// ResearchConfig tunes the pipeline stages.
type ResearchConfig struct {
	AdapterTimeout      time.Duration `mapstructure:"adapter_timeout"`
	OverallTimeout      time.Duration `mapstructure:"overall_timeout"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold"`
	Scoring             ScoringConfig `mapstructure:"scoring"`
}

// LLMConfig configures the prose generator collaborator.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// StorageConfig contains the postgres connection settings for report
// artifacts.
type StorageConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN assembles a postgres connection string, preferring an explicit URL.
func (s StorageConfig) DSN() (string, error) {
	if s.URL != "" {
		return s.URL, nil
	}
	if s.Host == "" || s.DBName == "" {
		return "", fmt.Errorf("postgres not configured (storage.host/dbname or storage.url)")
	}
	port := s.Port
	if port == "" {
		port = "5432"
	}
	ssl := s.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", s.User, s.Password, s.Host, port, s.DBName, ssl), nil
}

// CacheConfig contains redis settings for the caller-side result cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Host    string        `mapstructure:"host"`
	Port    string        `mapstructure:"port"`
	Pass    string        `mapstructure:"pass"`
	DB      int           `mapstructure:"db"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("gate.respect_robots", true)
	viper.SetDefault("gate.user_agent", "talor-research")
	viper.SetDefault("gate.rate_per_second", 1.0)
	viper.SetDefault("gate.burst", 2)
	viper.SetDefault("gate.max_wait", "300ms")
	viper.SetDefault("gate.robots_ttl", "1h")
	viper.SetDefault("sources.http_timeout", "8s")
	viper.SetDefault("sources.retries", 1)
	viper.SetDefault("sources.backoff", "200ms")
	viper.SetDefault("research.adapter_timeout", "8s")
	viper.SetDefault("research.overall_timeout", "20s")
	viper.SetDefault("research.similarity_threshold", 0.8)
	viper.SetDefault("research.scoring.term_overlap", 0.5)
	viper.SetDefault("research.scoring.recency", 0.3)
	viper.SetDefault("research.scoring.source_priority", 0.2)
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.timeout", "30s")
	viper.SetDefault("cache.ttl", "15m")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("TALOR")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.Gate = config.Gate.Normalize()
	config.Research.Scoring = config.Research.Scoring.Normalize()
	if err := config.Gate.Validate(); err != nil {
		panic(fmt.Errorf("invalid gate config: %w", err))
	}
	if err := config.Research.Scoring.Validate(); err != nil {
		panic(fmt.Errorf("invalid scoring config: %w", err))
	}
	return &config
}
