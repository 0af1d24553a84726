package event

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RemoteClusterUpdate is the type of event sent whenever a remote cluster is created, updated or
// deleted. Consoles listing remote clusters refresh on it.
const RemoteClusterUpdate = "remoteclusterUpdate"

const subscriberBufferSize = 16

type Event struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Name   string `json:"name"`
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[uuid.UUID]chan Event),
	}
}

// Broker fans out events to all subscribers within this process.
type Broker struct {
	subscribers map[uuid.UUID]chan Event
	lock        sync.Mutex
}

// Subscribe registers a subscriber. Events are received on the returned channel until Unsubscribe
// is called with the returned id.
func (b *Broker) Subscribe() (uuid.UUID, <-chan Event) {
	b.lock.Lock()
	defer b.lock.Unlock()

	id := uuid.New()
	channel := make(chan Event, subscriberBufferSize)
	b.subscribers[id] = channel
	return id, channel
}

// Unsubscribe removes the subscriber and closes its channel. Unknown ids are ignored.
func (b *Broker) Unsubscribe(id uuid.UUID) {
	b.lock.Lock()
	defer b.lock.Unlock()

	channel, ok := b.subscribers[id]
	if !ok {
		return
	}
	close(channel)
	delete(b.subscribers, id)
}

// Len returns the number of subscribers.
func (b *Broker) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.subscribers)
}

// Publish sends the event to every subscriber. Subscribers not keeping up miss the event.
func (b *Broker) Publish(_ context.Context, event Event) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	for _, channel := range b.subscribers {
		select {
		case channel <- event:
		default:
		}
	}
	return nil
}
