package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

func New() Config {
	return Config{
		Environment: optionalEnv("ENVIRONMENT", "production"),
		BasePath:    requireEnv("BASE_PATH"),
		Postgresql: Postgresql{
			Host:         requireEnv("DATABASE_HOST"),
			Port:         requireEnvAsInt("DATABASE_PORT"),
			Username:     requireEnv("DATABASE_USERNAME"),
			Password:     requireEnv("DATABASE_PASSWORD"),
			DatabaseName: requireEnv("DATABASE_NAME"),
		},
		RabbitMqURL: RabbitMQ{
			Host:     optionalEnv("RABBITMQ_HOST", ""),
			Port:     optionalEnvAsInt("RABBITMQ_PORT", 5672),
			Username: optionalEnv("RABBITMQ_USERNAME", ""),
			Password: optionalEnv("RABBITMQ_PASSWORD", ""),
			Exchange: optionalEnv("RABBITMQ_EXCHANGE", "remote-cluster"),
		},
		Authentication: Authentication{
			PublicKey: requireEnv("AUTHENTICATION_PUBLIC_KEY"),
		},
		MaskingIdentity:  requireEnv("MASKING_IDENTITY"),
		CatalogDirectory: optionalEnv("CATALOG_DIRECTORY", ""),
		JaegerEndpoint:   optionalEnv("JAEGER_ENDPOINT", ""),
	}
}

type Config struct {
	Environment    string
	BasePath       string
	Postgresql     Postgresql
	RabbitMqURL    RabbitMQ
	Authentication Authentication
	// MaskingIdentity is an age X25519 identity used to encrypt masked parameter values at rest.
	MaskingIdentity string
	// CatalogDirectory optionally holds *-service.yaml and *-view.yaml definitions loaded on top
	// of the embedded ones.
	CatalogDirectory string
	JaegerEndpoint   string
}

type Postgresql struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
}

type RabbitMQ struct {
	Host     string
	Port     int
	Username string
	Password string
	Exchange string
}

func (r RabbitMQ) Enabled() bool {
	return r.Host != ""
}

func (r RabbitMQ) GetUrl() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.Username, r.Password, r.Host, r.Port)
}

type Authentication struct {
	// PublicKey is the PEM encoded RSA key access tokens are verified with.
	PublicKey string
}

func requireEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("Can't find environment variable: %s\n", key)
	}
	return value
}

func requireEnvAsInt(key string) int {
	valueStr := requireEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse value as integer: %s", err.Error())
	}
	return value
}

func optionalEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

func optionalEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse value as integer: %s", err.Error())
	}
	return value
}
