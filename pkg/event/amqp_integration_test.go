package event_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dhis2-sre/im-remote-cluster/internal/middleware"
	"github.com/dhis2-sre/im-remote-cluster/pkg/event"
	"github.com/dhis2-sre/im-remote-cluster/pkg/inttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAMQPPublisher(t *testing.T) {
	t.Parallel()

	rabbitMQ := inttest.SetupRabbitMQAMQP(t)

	publisher, err := event.NewAMQPPublisher(rabbitMQ.URI, "remote-cluster")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, publisher.Close())
	})

	deliveries := rabbitMQ.Consume(t, "remote-cluster")

	ctx := middleware.NewContextWithCorrelationID(context.Background(), "b1c2d3")
	err = publisher.Publish(ctx, event.Event{Type: event.RemoteClusterUpdate, Action: "created", Name: "cluster1"})
	require.NoError(t, err)

	select {
	case delivery := <-deliveries:
		assert.Equal(t, "application/json", delivery.ContentType)
		assert.Equal(t, event.RemoteClusterUpdate, delivery.Type)
		assert.Equal(t, event.RemoteClusterUpdate, delivery.RoutingKey)
		assert.Equal(t, "b1c2d3", delivery.CorrelationId)
		var got event.Event
		require.NoError(t, json.Unmarshal(delivery.Body, &got))
		assert.Equal(t, event.Event{Type: event.RemoteClusterUpdate, Action: "created", Name: "cluster1"}, got)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the event")
	}
}
