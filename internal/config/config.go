package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath    = "./dev.db"
	defaultPort      = "8080"
	defaultEnv       = "development"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env         string
	DBPath      string
	Port        string
	LogLevel    string
	LogFormat   string
	SeedSamples bool
}

// IsDev reports whether the app runs in the development environment.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is ignored
// and variables already present in the environment are never overwritten.
func LoadFile(dotenvPath string) Config {
	_ = godotenv.Load(dotenvPath)

	return Config{
		Env:         envOr("APP_ENV", defaultEnv),
		DBPath:      envOr("DB_PATH", defaultDBPath),
		Port:        envOr("PORT", defaultPort),
		LogLevel:    envOr("LOG_LEVEL", defaultLogLevel),
		LogFormat:   envOr("LOG_FORMAT", defaultLogFormat),
		SeedSamples: envBool("SEED_SAMPLES", true),
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}
