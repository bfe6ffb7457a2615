package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultTokenTTL = 30 * 24 * time.Hour

type Config struct {
	DataDir            string        `yaml:"data_dir"`
	DatabasePath       string        `yaml:"database_path"`
	JWTSecret          string        `yaml:"jwt_secret"`
	TokenTTL           time.Duration `yaml:"token_ttl"`
	Port               string        `yaml:"port"`
	LogLevel           string        `yaml:"log_level"`
	LogFormat          string        `yaml:"log_format"`
	LoginRatePerMinute int           `yaml:"login_rate_per_minute"`
	LoginBurst         int           `yaml:"login_burst"`
}

func Default() Config {
	return Config{
		DataDir:            "./data",
		DatabasePath:       "./data/coreterra.db",
		TokenTTL:           DefaultTokenTTL,
		Port:               "8000",
		LogLevel:           "info",
		LogFormat:          "text",
		LoginRatePerMinute: 10,
		LoginBurst:         5,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE, then environment variables. A .env file in the working
// directory is read into the environment first without overriding it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	config := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := config.mergeEnv(); err != nil {
		return Config{}, err
	}

	if config.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return config, config.Validate()
}

func (config *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (config *Config) mergeEnv() error {
	config.DataDir = envOrDefault("DATA_DIR", config.DataDir)
	config.DatabasePath = envOrDefault("DATABASE_PATH", config.DatabasePath)
	config.JWTSecret = envOrDefault("JWT_SECRET", config.JWTSecret)
	config.Port = envOrDefault("PORT", config.Port)
	config.LogLevel = envOrDefault("LOG_LEVEL", config.LogLevel)
	config.LogFormat = envOrDefault("LOG_FORMAT", config.LogFormat)

	if value := os.Getenv("TOKEN_TTL"); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parsing TOKEN_TTL: %w", err)
		}
		config.TokenTTL = ttl
	}
	for key, target := range map[string]*int{
		"LOGIN_RATE_PER_MINUTE": &config.LoginRatePerMinute,
		"LOGIN_BURST":           &config.LoginBurst,
	} {
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}

func (config Config) Validate() error {
	if config.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", config.TokenTTL)
	}
	if config.LoginRatePerMinute <= 0 || config.LoginBurst <= 0 {
		return fmt.Errorf("login rate and burst must be positive")
	}
	if _, err := parseLevel(config.LogLevel); err != nil {
		return err
	}
	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", config.LogFormat)
	}
	return nil
}

func (config Config) SlogLevel() slog.Level {
	level, _ := parseLevel(config.LogLevel)
	return level
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
	return level, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
