package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RabbitURL string

	MailServiceURL   string
	MailServiceToken string
	FrontendURL      string

	DefaultTenantID string

	WorkerPollInterval time.Duration
	WorkerBatchSize    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "booking_db"),

		RabbitURL: getEnv("RABBITMQ_URL", ""),

		MailServiceURL:   getEnv("MAIL_SERVICE_URL", "http://localhost:8000/api/v1/send"),
		MailServiceToken: getEnv("MAIL_SERVICE_TOKEN", "test-token-1"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),

		DefaultTenantID: getEnv("DEFAULT_TENANT_ID", "default"),

		WorkerPollInterval: getDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		WorkerBatchSize:    getInt("WORKER_BATCH_SIZE", 10),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
