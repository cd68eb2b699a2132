package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Session    SessionConfig
	RaffleAPI  RaffleAPIConfig
	Redis      RedisConfig
	R2         R2Config
	Log        LogConfig
	Storefront Storefront
}

type ServerConfig struct {
	Port            string
	Host            string
	Env             string
	UploadsPath     string
	ShutdownTimeout time.Duration
}

type SessionConfig struct {
	Secret string
	MaxAge int
}

type RaffleAPIConfig struct {
	BaseURL      string
	CountriesURL string
	Timeout      time.Duration
}

type RedisConfig struct {
	URL          string // empty selects the in-process cache
	Prefix       string
	CatalogTTL   time.Duration
	ProofHoldTTL time.Duration // how long a payment proof waits for a checkout retry
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
	Endpoint        string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Enabled reports whether R2 credentials were provided
func (c R2Config) Enabled() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// IsProduction reports whether the server runs with production settings
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// Address returns the listen address
func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "localhost"),
			Env:             getEnv("ENV", "development"),
			UploadsPath:     getEnv("UPLOADS_PATH", "data/uploads"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
			MaxAge: getEnvAsInt("SESSION_MAX_AGE", 86400*30),
		},
		RaffleAPI: RaffleAPIConfig{
			BaseURL:      getEnv("RAFFLE_API_URL", "https://back.rifasmym.ec/api"),
			CountriesURL: getEnv("COUNTRIES_API_URL", "https://rifas.soelecsa.com/api"),
			Timeout:      getEnvAsDuration("RAFFLE_API_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			Prefix:       getEnv("REDIS_PREFIX", "storefront"),
			CatalogTTL:   getEnvAsDuration("CATALOG_TTL", 30*time.Second),
			ProofHoldTTL: getEnvAsDuration("PROOF_HOLD_TTL", 30*time.Minute),
		},
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", "payment-proofs"),
			PublicURL:       getEnv("R2_PUBLIC_URL", ""),
			Region:          getEnv("R2_REGION", "auto"),
			Endpoint:        getEnv("R2_ENDPOINT", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
		Storefront: DefaultStorefront(),
	}

	if path := getEnv("STOREFRONT_CONFIG", ""); path != "" {
		storefront, err := LoadStorefront(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load storefront config: %w", err)
		}
		config.Storefront = storefront
	}

	if config.Server.IsProduction() && config.Session.Secret == "your-secret-key-change-in-production" {
		return nil, fmt.Errorf("SESSION_SECRET must be set in production")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("45s") or a plain number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
