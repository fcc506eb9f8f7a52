package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds process configuration, read once at startup from the
// environment. Every field has a working default so a bare `go run` against
// a local Mongo comes up without any setup.
type Config struct {
	Port    string
	MongoDB string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	MQTTBroker string
	MQTTTopic  string

	SchedulerInterval time.Duration
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Port:    getEnv("PORT", "8080"),
		MongoDB: getEnv("MONGO_DB", "maintenance_tracker"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "maintenance@localhost"),

		MQTTBroker: os.Getenv("MQTT_BROKER"),
		MQTTTopic:  getEnv("MQTT_TOPIC", "maintenance/notifications"),

		SchedulerInterval: getEnvDuration("SCHEDULER_INTERVAL", 24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
