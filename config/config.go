package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Dataset files (hospital directory, lab catalog, emergency, schedule).
	DataDir string `mapstructure:"DATA_DIR"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisContextDB int    `mapstructure:"REDIS_CONTEXT_DB"`

	// Booking ledger tuning.
	HoldTTLSeconds   int    `mapstructure:"HOLD_TTL_SECONDS"`
	SweepIntervalSec int    `mapstructure:"SWEEP_INTERVAL_SECONDS"`
	OverrideCanceler string `mapstructure:"OVERRIDE_CANCELER"`

	// Router configuration.
	RouterFallback bool   `mapstructure:"ROUTER_FALLBACK"`
	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_CONTEXT_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "medirouter")
	viper.SetDefault("HOLD_TTL_SECONDS", 60)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 15)
	viper.SetDefault("OVERRIDE_CANCELER", "")
	viper.SetDefault("ROUTER_FALLBACK", true)
	viper.SetDefault("GEMINI_API_KEY", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// HoldTTL returns the configured hold TTL as a duration.
func HoldTTL() time.Duration {
	secs := AppConfig.HoldTTLSeconds
	if secs <= 0 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

// SweepInterval returns how often the expired-hold sweep runs.
func SweepInterval() time.Duration {
	secs := AppConfig.SweepIntervalSec
	if secs <= 0 {
		secs = 15
	}
	return time.Duration(secs) * time.Second
}
