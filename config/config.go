package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Auction AuctionConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type AuctionConfig struct {
	SweepInterval   time.Duration
	MaxBidAttempts  int
	EventBufferSize int
}

// Load reads configuration from the environment, with an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	sweepSeconds, _ := strconv.Atoi(getEnv("SWEEP_INTERVAL_SECONDS", "1"))
	if sweepSeconds <= 0 {
		sweepSeconds = 1
	}
	maxAttempts, _ := strconv.Atoi(getEnv("MAX_BID_ATTEMPTS", "5"))
	bufferSize, _ := strconv.Atoi(getEnv("EVENT_BUFFER_SIZE", "16"))

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Auction: AuctionConfig{
			SweepInterval:   time.Duration(sweepSeconds) * time.Second,
			MaxBidAttempts:  maxAttempts,
			EventBufferSize: bufferSize,
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
