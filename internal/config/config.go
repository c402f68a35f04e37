package config

import (
	"os"
	"strconv"

	"doorsim/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Simulation SimulationConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds lifetime-stats database settings. The database is
// optional; with no URL configured, lifetime persistence is disabled and
// simulations run purely in memory.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// SimulationConfig holds defaults for batch runs
type SimulationConfig struct {
	DefaultTotalGames int
	DefaultChunkSize  int
	FastMode          bool
	Seed              int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	config.Server = ServerConfig{
		Port: getEnv("SERVER_PORT", "8080"),
	}

	dbURL := os.Getenv("DATABASE_URL")
	config.Database = DatabaseConfig{
		URL:     dbURL,
		Enabled: dbURL != "",
	}

	simConfig, err := loadSimulationConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load simulation configuration")
	}
	config.Simulation = *simConfig

	return config, nil
}

func loadSimulationConfig() (*SimulationConfig, error) {
	totalGames, err := getEnvInt("SIM_TOTAL_GAMES", 1000)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if totalGames <= 0 {
		return nil, errors.New(errors.CodeConfigInvalid, "SIM_TOTAL_GAMES must be positive")
	}

	chunkSize, err := getEnvInt("SIM_CHUNK_SIZE", 100)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if chunkSize <= 0 {
		return nil, errors.New(errors.CodeConfigInvalid, "SIM_CHUNK_SIZE must be positive")
	}

	seed, err := getEnvInt64("SIM_SEED", 0)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	return &SimulationConfig{
		DefaultTotalGames: totalGames,
		DefaultChunkSize:  chunkSize,
		FastMode:          getEnv("SIM_FAST_MODE", "") == "true",
		Seed:              seed,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer for %s", key)
	}
	return parsed, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer for %s", key)
	}
	return parsed, nil
}
