package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string
	RedisAddr    string
	RabbitURL    string
	MongoURI     string
	OTLPEndpoint string

	CircuitUnitCost   float64
	ExtensionWindow   time.Duration
	ExtensionDuration time.Duration
	PaymentDelay      time.Duration

	RivalBidderEnabled bool
	RivalBidderName    string
	RivalBidderDelay   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:     envOr("HTTP_ADDR", ":8080"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RabbitURL:    os.Getenv("RABBIT_URL"),
		MongoURI:     os.Getenv("MONGO_URI"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		CircuitUnitCost:   envFloat("CIRCUIT_UNIT_COST", 50),
		ExtensionWindow:   envDuration("BID_EXTENSION_WINDOW", 5*time.Minute),
		ExtensionDuration: envDuration("BID_EXTENSION_DURATION", 5*time.Minute),
		PaymentDelay:      envDuration("PAYMENT_PROCESSING_DELAY", 2*time.Second),

		RivalBidderEnabled: os.Getenv("RIVAL_BIDDER_ENABLED") == "true",
		RivalBidderName:    envOr("RIVAL_BIDDER_NAME", "Starlight Concessions"),
		RivalBidderDelay:   envDuration("RIVAL_BIDDER_DELAY", 8*time.Second),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d == 0 {
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f == 0 {
		return fallback
	}
	return f
}
