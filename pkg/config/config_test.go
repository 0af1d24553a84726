package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Setenv("BASE_PATH", "/api")
	t.Setenv("DATABASE_HOST", "localhost")
	t.Setenv("DATABASE_PORT", "5432")
	t.Setenv("DATABASE_USERNAME", "im")
	t.Setenv("DATABASE_PASSWORD", "im")
	t.Setenv("DATABASE_NAME", "remote_cluster")
	t.Setenv("AUTHENTICATION_PUBLIC_KEY", "key")
	t.Setenv("MASKING_IDENTITY", "identity")
	t.Setenv("RABBITMQ_HOST", "rabbitmq")

	cfg := New()

	assert.Equal(t, "/api", cfg.BasePath)
	assert.Equal(t, 5432, cfg.Postgresql.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.RabbitMqURL.Enabled())
	assert.Equal(t, "remote-cluster", cfg.RabbitMqURL.Exchange)
	assert.Equal(t, "amqp://:@rabbitmq:5672/", cfg.RabbitMqURL.GetUrl())
	assert.Empty(t, cfg.CatalogDirectory)
}

func TestRabbitMQ_Enabled(t *testing.T) {
	assert.False(t, RabbitMQ{}.Enabled())
}
