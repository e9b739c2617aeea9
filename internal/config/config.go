package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Remote document store
	MongoURI string `mapstructure:"MONGO_URI"`
	MongoDB  string `mapstructure:"MONGO_DB"`

	// Offline write queue
	OfflineQueuePath  string `mapstructure:"OFFLINE_QUEUE_PATH"`
	DrainIntervalSecs int    `mapstructure:"DRAIN_INTERVAL_SECONDS"`
	ProbeTimeoutSecs  int    `mapstructure:"PROBE_TIMEOUT_SECONDS"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	JWTRefreshHours    int    `mapstructure:"JWT_REFRESH_HOURS"`

	// Business
	StoreName      string `mapstructure:"STORE_NAME"`
	PDFStoragePath string `mapstructure:"PDF_STORAGE_PATH"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "saripos")
	viper.SetDefault("OFFLINE_QUEUE_PATH", "offline_queue.db")
	viper.SetDefault("DRAIN_INTERVAL_SECONDS", 30)
	viper.SetDefault("PROBE_TIMEOUT_SECONDS", 2)
	viper.SetDefault("JWT_EXPIRATION_HOURS", 8)
	viper.SetDefault("JWT_REFRESH_HOURS", 24)
	viper.SetDefault("STORE_NAME", "Sari POS")
	viper.SetDefault("PDF_STORAGE_PATH", "/tmp/saripos/receipts")

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
