package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Autosave  AutosaveConfig  `yaml:"autosave"`
	Generator GeneratorConfig `yaml:"generator"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

type SnapshotConfig struct {
	Backend       string `yaml:"backend"` // "sqlite" or "redis"
	Namespace     string `yaml:"namespace"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type AutosaveConfig struct {
	QuietPeriod time.Duration `yaml:"quiet_period"`
	MaxTries    uint          `yaml:"max_tries"`
}

type GeneratorConfig struct {
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	DefaultCount int    `yaml:"default_count"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "deckline.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		Snapshot: SnapshotConfig{
			Backend:   "sqlite",
			Namespace: "outline-store",
		},
		Autosave: AutosaveConfig{
			QuietPeriod: 2 * time.Second,
			MaxTries:    3,
		},
		Generator: GeneratorConfig{
			DefaultCount: 6,
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables, in that order of increasing precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("DECKLINE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Snapshot.Backend {
	case "sqlite":
	case "redis":
		if c.Snapshot.RedisAddr == "" {
			return fmt.Errorf("snapshot backend redis requires a redis address")
		}
	default:
		return fmt.Errorf("invalid snapshot backend %q", c.Snapshot.Backend)
	}
	if c.Autosave.QuietPeriod <= 0 {
		return fmt.Errorf("autosave quiet period must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("DECKLINE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("DECKLINE_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid DECKLINE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if origins := os.Getenv("DECKLINE_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	if mode := os.Getenv("DECKLINE_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("DECKLINE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("DECKLINE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("DECKLINE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if enabled := os.Getenv("DECKLINE_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid DECKLINE_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if backend := os.Getenv("DECKLINE_SNAPSHOT_BACKEND"); backend != "" {
		cfg.Snapshot.Backend = backend
	}
	if ns := os.Getenv("DECKLINE_SNAPSHOT_NAMESPACE"); ns != "" {
		cfg.Snapshot.Namespace = ns
	}
	if addr := os.Getenv("DECKLINE_REDIS_ADDR"); addr != "" {
		cfg.Snapshot.RedisAddr = addr
	}
	if pw := os.Getenv("DECKLINE_REDIS_PASSWORD"); pw != "" {
		cfg.Snapshot.RedisPassword = pw
	}
	if quiet := os.Getenv("DECKLINE_AUTOSAVE_QUIET"); quiet != "" {
		d, err := time.ParseDuration(quiet)
		if err != nil {
			return fmt.Errorf("invalid DECKLINE_AUTOSAVE_QUIET: %w", err)
		}
		cfg.Autosave.QuietPeriod = d
	}
	if tries := os.Getenv("DECKLINE_AUTOSAVE_MAX_TRIES"); tries != "" {
		n, err := strconv.ParseUint(tries, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid DECKLINE_AUTOSAVE_MAX_TRIES: %w", err)
		}
		cfg.Autosave.MaxTries = uint(n)
	}
	if key := os.Getenv("DECKLINE_GEMINI_API_KEY"); key != "" {
		cfg.Generator.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && cfg.Generator.APIKey == "" {
		cfg.Generator.APIKey = key
	}
	if model := os.Getenv("DECKLINE_GEMINI_MODEL"); model != "" {
		cfg.Generator.Model = model
	}
	if count := os.Getenv("DECKLINE_GENERATE_COUNT"); count != "" {
		n, err := strconv.Atoi(count)
		if err != nil {
			return fmt.Errorf("invalid DECKLINE_GENERATE_COUNT: %w", err)
		}
		cfg.Generator.DefaultCount = n
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
