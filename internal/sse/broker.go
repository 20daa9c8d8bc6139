// Package sse fans dashboard events out to Server-Sent Events streams.
package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/doctrot/site-server-go/internal/redis"
)

const (
	HeartbeatInterval = 30 * time.Second
	clientBufferSize  = 100
)

// TopicAdmin carries notifications for the admin dashboard.
const TopicAdmin = "admin"

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEvent marshals data into an Event of the given type.
func NewEvent(eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: raw}, nil
}

// Client is one open stream. Done is closed when the broker drops it.
type Client struct {
	Topic  string
	Events chan Event
	Done   chan struct{}
}

type topicState struct {
	clients map[*Client]struct{}
	// stop ends the Redis relay for the topic; nil without Redis.
	stop context.CancelFunc
}

// Broker delivers events to the clients of a topic. With Redis, Publish goes
// through pub/sub so clients connected to any instance receive it; without
// Redis, delivery stays in process.
type Broker struct {
	redis  *redisclient.Client
	mu     sync.RWMutex
	topics map[string]*topicState
	closed bool
}

func NewBroker(redisClient *redisclient.Client) *Broker {
	return &Broker{
		redis:  redisClient,
		topics: make(map[string]*topicState),
	}
}

func (b *Broker) Subscribe(topic string) *Client {
	client := &Client{
		Topic:  topic,
		Events: make(chan Event, clientBufferSize),
		Done:   make(chan struct{}),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(client.Done)
		return client
	}

	state, ok := b.topics[topic]
	if !ok {
		state = &topicState{clients: make(map[*Client]struct{})}
		if b.redis != nil {
			ctx, cancel := context.WithCancel(context.Background())
			state.stop = cancel
			go b.relay(ctx, topic)
		}
		b.topics[topic] = state
	}
	state.clients[client] = struct{}{}

	log.Debug().Str("topic", topic).Int("clients", len(state.clients)).Msg("sse client subscribed")
	return client
}

// Unsubscribe is safe to call more than once and after Close.
func (b *Broker) Unsubscribe(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.topics[client.Topic]
	if !ok {
		return
	}
	if _, ok := state.clients[client]; !ok {
		return
	}
	delete(state.clients, client)
	close(client.Done)

	if len(state.clients) == 0 {
		if state.stop != nil {
			state.stop()
		}
		delete(b.topics, client.Topic)
	}
}

func (b *Broker) Publish(ctx context.Context, topic string, event Event) error {
	if b.redis == nil {
		b.deliver(topic, event)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.redis.Publish(ctx, redisclient.EventChannel(topic), payload).Err()
}

// relay forwards pub/sub messages for topic to local clients until ctx ends.
func (b *Broker) relay(ctx context.Context, topic string) {
	pubsub := b.redis.Subscribe(ctx, redisclient.EventChannel(topic))
	defer pubsub.Close()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Str("topic", topic).Msg("discarding malformed event")
				continue
			}
			b.deliver(topic, event)
		}
	}
}

// deliver never blocks: a client whose buffer is full misses the event.
func (b *Broker) deliver(topic string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	state, ok := b.topics[topic]
	if !ok {
		return
	}
	for client := range state.clients {
		select {
		case client.Events <- event:
		default:
			log.Warn().Str("topic", topic).Msg("sse client buffer full, dropping event")
		}
	}
}

// Close disconnects every client and stops all Redis relays. Later
// subscribers are closed immediately.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, state := range b.topics {
		if state.stop != nil {
			state.stop()
		}
		for client := range state.clients {
			close(client.Done)
		}
	}
	b.topics = make(map[string]*topicState)
}

func (b *Broker) ClientCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if state, ok := b.topics[topic]; ok {
		return len(state.clients)
	}
	return 0
}

func (b *Broker) TotalClients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, state := range b.topics {
		total += len(state.clients)
	}
	return total
}
