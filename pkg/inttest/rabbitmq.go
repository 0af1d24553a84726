package inttest

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	rabbitMQUser     = "guest"
	rabbitMQPassword = "guest"
	amqpPort         = nat.Port("5672/tcp")
)

// RabbitMQ is a RabbitMQ container together with a channel tests use to observe what the code under
// test publishes.
type RabbitMQ struct {
	// URI to pass to the code under test
	URI     string
	Channel *amqp.Channel
}

// SetupRabbitMQAMQP starts a RabbitMQ container and opens an AMQP channel to it. The management
// plugin is enabled so a failing test can be debugged using its admin panel.
func SetupRabbitMQAMQP(t *testing.T) *RabbitMQ {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "bitnami/rabbitmq:3.13",
			Env: map[string]string{
				"RABBITMQ_USERNAME":                    rabbitMQUser,
				"RABBITMQ_PASSWORD":                    rabbitMQPassword,
				"RABBITMQ_MANAGEMENT_ALLOW_WEB_ACCESS": "true",
				"RABBITMQ_DISK_FREE_ABSOLUTE_LIMIT":    "100MB",
			},
			ExposedPorts: []string{string(amqpPort), "15672/tcp"},
			WaitingFor:   wait.ForLog("Time to start RabbitMQ").WithOccurrence(2),
		},
		Started: true,
	})
	require.NoError(t, err, "failed setting up RabbitMQ")
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx), "failed to terminate RabbitMQ")
	})

	host, err := container.Host(ctx)
	require.NoError(t, err, "failed to get RabbitMQ host")
	port, err := container.MappedPort(ctx, amqpPort)
	require.NoError(t, err, "failed to get RabbitMQ AMQP port")
	uri := fmt.Sprintf("amqp://%s:%s@%s:%s", rabbitMQUser, rabbitMQPassword, host, port.Port())

	conn, err := amqp.Dial(uri)
	require.NoError(t, err, "failed setting up AMQP connection")
	t.Cleanup(func() {
		_ = conn.Close()
	})
	channel, err := conn.Channel()
	require.NoError(t, err, "failed setting up AMQP channel")

	return &RabbitMQ{URI: uri, Channel: channel}
}

// Consume binds an exclusive queue to the exchange and returns its deliveries. The exchange has to
// exist already.
func (r *RabbitMQ) Consume(t *testing.T, exchange string) <-chan amqp.Delivery {
	t.Helper()

	queue, err := r.Channel.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err, "failed to declare queue")
	err = r.Channel.QueueBind(queue.Name, "", exchange, false, nil)
	require.NoError(t, err, "failed to bind queue to exchange %q", exchange)
	deliveries, err := r.Channel.Consume(queue.Name, "", true, true, false, false, nil)
	require.NoError(t, err, "failed to consume queue")
	return deliveries
}
