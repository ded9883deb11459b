// Package config loads settings from config files, .env files and the
// environment, in that order of increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

// Config holds all runtime settings.
type Config struct {
	// GitHub API access
	GitHub GitHubConfig `yaml:"github" mapstructure:"github"`

	// Neo4j connection for the graph sink and loader
	Neo4j Neo4jConfig `yaml:"neo4j" mapstructure:"neo4j"`

	// Collection behavior
	Collect CollectConfig `yaml:"collect" mapstructure:"collect"`

	// Logging
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

type GitHubConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	RateLimit int    `yaml:"rate_limit" mapstructure:"rate_limit"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri" mapstructure:"uri"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
}

type CollectConfig struct {
	// Days bounds how far back activity is fetched.
	Days int `yaml:"days" mapstructure:"days"`
	// BotAllowlist names logins treated as bots beyond the suffix heuristics.
	BotAllowlist []string `yaml:"bot_allowlist" mapstructure:"bot_allowlist"`
	// CheckpointPath enables resumable batches when set.
	CheckpointPath string `yaml:"checkpoint_path" mapstructure:"checkpoint_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		GitHub:   GitHubConfig{RateLimit: 5},
		Neo4j:    Neo4jConfig{URI: "bolt://localhost:7687", User: "neo4j", Database: "neo4j"},
		Collect:  CollectConfig{Days: 30},
		LogLevel: "info",
	}
}

// Load reads configuration. With an explicit path the file must be readable;
// otherwise standard locations are searched and a missing file just means
// defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("github", cfg.GitHub)
	v.SetDefault("neo4j", cfg.Neo4j)
	v.SetDefault("collect", cfg.Collect)
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetEnvPrefix("GHGRAPH")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".ghgraph")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".ghgraph"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, errors.KindConfig, "read config file").WithContext("path", v.ConfigFileUsed())
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.KindConfig, "unmarshal config")
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence. Missing files are
// fine; the environment may already be populated.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		homeEnvFile := filepath.Join(homeDir, ".ghgraph", ".env")
		if _, err := os.Stat(homeEnvFile); err == nil {
			godotenv.Load(homeEnvFile)
		}
	}
}

// applyEnvOverrides maps well-known environment variables onto the config.
// These win over both config files and the GHGRAPH_ prefixed variables.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if rateLimit := os.Getenv("GITHUB_RATE_LIMIT"); rateLimit != "" {
		if n, err := strconv.Atoi(rateLimit); err == nil {
			cfg.GitHub.RateLimit = n
		}
	}
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		cfg.Neo4j.User = user
	}
	if password := os.Getenv("NEO4J_PASSWORD"); password != "" {
		cfg.Neo4j.Password = password
	}
	if database := os.Getenv("NEO4J_DATABASE"); database != "" {
		cfg.Neo4j.Database = database
	}
}

// Validate checks the settings a collection run depends on.
func (c *Config) Validate() error {
	if c.GitHub.Token == "" {
		return errors.ConfigError("github token not configured (set GITHUB_TOKEN)")
	}
	if c.Collect.Days <= 0 {
		return errors.ConfigError("collect.days must be positive")
	}
	return nil
}
