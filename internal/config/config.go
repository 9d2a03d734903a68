package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvFile    = ".env"
	ConfigFile = "config.yaml"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "promptstudio.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTTTL           = "24h"
	defaultLoginMaxAttempts = 5
	defaultLoginDecay       = "60s"
	defaultRatePerMinute    = 60
	defaultStorageRoot      = "./storage/app/public"
	defaultStoragePublicURL = "/storage"
	defaultGeminiModel      = "gemini-2.5-flash"
	defaultInferenceTimeout = "60s"
	defaultLogLevel         = "info"
)

type Config struct {
	AppEnv    string          `yaml:"app_env"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Storage   StorageConfig   `yaml:"storage"`
	Inference InferenceConfig `yaml:"inference"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type HTTPConfig struct {
	Addr               string   `yaml:"addr"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	RawJWTTTL        string `yaml:"jwt_ttl"`
	LoginMaxAttempts int    `yaml:"login_max_attempts"`
	RawLoginDecay    string `yaml:"login_decay"`

	JWTTTL     time.Duration `yaml:"-"`
	LoginDecay time.Duration `yaml:"-"`
}

// RateLimitConfig bounds authenticated API traffic per user.
// Zero means the default; a negative value disables the throttle.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type StorageConfig struct {
	Root      string `yaml:"root"`
	PublicURL string `yaml:"public_url"`
}

type InferenceConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	RawTimeout string `yaml:"timeout"`

	Timeout time.Duration `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads config.yaml (searched upwards from the working directory),
// loads .env next to it and lets environment variables override file values.
// A missing config.yaml is not an error: defaults and env still apply.
func Load() (*Config, error) {
	base := BasePath()
	_ = godotenv.Load(filepath.Join(base, EnvFile))

	cfg := &Config{}
	data, err := os.ReadFile(filepath.Join(base, ConfigFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ConfigFile, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read %s: %w", ConfigFile, err)
	}

	return finalize(cfg)
}

// LoadFile parses a single YAML file without touching .env.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return finalize(cfg)
}

func finalize(cfg *Config) (*Config, error) {
	applyEnv(cfg)
	applyDefaults(cfg)

	var err error
	cfg.Auth.JWTTTL, err = parseDuration("auth.jwt_ttl", cfg.Auth.RawJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.Auth.LoginDecay, err = parseDuration("auth.login_decay", cfg.Auth.RawLoginDecay)
	if err != nil {
		return nil, err
	}
	cfg.Inference.Timeout, err = parseDuration("inference.timeout", cfg.Inference.RawTimeout)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", cfg.HTTP.Addr)
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.HTTP.CORSAllowedOrigins = append(cfg.HTTP.CORSAllowedOrigins, o)
			}
		}
	}
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	if v := os.Getenv("DATABASE_AUTO_MIGRATE"); v != "" {
		cfg.Database.AutoMigrate = parseBool(v)
	}
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.RawJWTTTL = getEnv("JWT_TTL", cfg.Auth.RawJWTTTL)
	cfg.Auth.LoginMaxAttempts = getIntEnv("LOGIN_MAX_ATTEMPTS", cfg.Auth.LoginMaxAttempts)
	cfg.Auth.RawLoginDecay = getEnv("LOGIN_DECAY", cfg.Auth.RawLoginDecay)
	cfg.RateLimit.RequestsPerMinute = getIntEnv("API_RATE_PER_MINUTE", cfg.RateLimit.RequestsPerMinute)
	cfg.Storage.Root = getEnv("STORAGE_ROOT", cfg.Storage.Root)
	cfg.Storage.PublicURL = getEnv("STORAGE_PUBLIC_URL", cfg.Storage.PublicURL)
	cfg.Inference.APIKey = getEnv("GEMINI_API_KEY", cfg.Inference.APIKey)
	cfg.Inference.Model = getEnv("GEMINI_MODEL", cfg.Inference.Model)
	cfg.Inference.RawTimeout = getEnv("INFERENCE_TIMEOUT", cfg.Inference.RawTimeout)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
}

func applyDefaults(cfg *Config) {
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}
	cfg.HTTP.Addr = orDefault(cfg.HTTP.Addr, defaultHTTPAddr)
	cfg.Database.URL = orDefault(cfg.Database.URL, defaultDatabaseURL)
	cfg.Auth.JWTSecret = orDefault(cfg.Auth.JWTSecret, defaultJWTSecret)
	cfg.Auth.RawJWTTTL = orDefault(cfg.Auth.RawJWTTTL, defaultJWTTTL)
	if cfg.Auth.LoginMaxAttempts == 0 {
		cfg.Auth.LoginMaxAttempts = defaultLoginMaxAttempts
	}
	cfg.Auth.RawLoginDecay = orDefault(cfg.Auth.RawLoginDecay, defaultLoginDecay)
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = defaultRatePerMinute
	}
	cfg.Storage.Root = orDefault(cfg.Storage.Root, defaultStorageRoot)
	cfg.Storage.PublicURL = strings.TrimRight(orDefault(cfg.Storage.PublicURL, defaultStoragePublicURL), "/")
	cfg.Inference.Model = orDefault(cfg.Inference.Model, defaultGeminiModel)
	cfg.Inference.RawTimeout = orDefault(cfg.Inference.RawTimeout, defaultInferenceTimeout)
	cfg.Logging.Level = orDefault(cfg.Logging.Level, defaultLogLevel)
}

func validateConfig(cfg *Config) error {
	if cfg.Auth.JWTTTL <= 0 {
		return fmt.Errorf("auth.jwt_ttl must be > 0")
	}
	if cfg.Auth.LoginMaxAttempts < 1 {
		return fmt.Errorf("auth.login_max_attempts must be >= 1")
	}
	if cfg.Auth.LoginDecay <= 0 {
		return fmt.Errorf("auth.login_decay must be > 0")
	}
	if cfg.Inference.Timeout <= 0 {
		return fmt.Errorf("inference.timeout must be > 0")
	}
	if cfg.Storage.Root == "" {
		return fmt.Errorf("storage.root must not be empty")
	}
	// public_url is mounted as a route, so it must be a non-root path.
	if !strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		return fmt.Errorf("storage.public_url must be a path such as /storage, got %q", cfg.Storage.PublicURL)
	}

	if cfg.IsProdLike() {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if strings.TrimSpace(cfg.Inference.APIKey) == "" {
			return fmt.Errorf("in prod/release GEMINI_API_KEY must be set")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

// BasePath walks up from the working directory until it finds config.yaml.
// Falls back to the working directory itself.
func BasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		if info, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil && !info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd
		}
		dir = parent
	}
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDuration(name, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
