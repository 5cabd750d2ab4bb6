// Package notify carries inventory change events from the business
// services to interested listeners (SSE clients, Redis, cache
// invalidation). Publishing is fire-and-forget: a lost event never
// fails the operation that produced it.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event topics.
const (
	TopicInventoryChanged     = "inventory.changed"
	TopicPurchaseOrderUpdated = "purchase_order.updated"
)

type Event struct {
	Topic    string    `json:"topic"`
	PartID   uint      `json:"part_id,omitempty"`
	POID     uint      `json:"po_id,omitempty"`
	Type     string    `json:"type,omitempty"`
	Quantity int       `json:"quantity,omitempty"`
	At       time.Time `json:"at"`
}

// Port is the outbound notification interface injected into services.
type Port interface {
	Publish(Event)
}

// Fanout publishes to every wrapped port.
type Fanout []Port

func (f Fanout) Publish(ev Event) {
	for _, p := range f {
		p.Publish(ev)
	}
}

// Hub is the in-process subscription registry backing the SSE stream.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan Event)}
}

// Subscribe registers a listener and returns its id and channel.
func (h *Hub) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish delivers ev to every subscriber. Slow subscribers with a full
// buffer miss the event rather than blocking the publisher.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// RedisPublisher pushes events onto a Redis channel so other processes
// (or a future broker) can consume them.
type RedisPublisher struct {
	Client  *redis.Client
	Channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = "partstrack.events"
	}
	return &RedisPublisher{Client: client, Channel: channel}
}

func (p *RedisPublisher) Publish(ev Event) {
	if p.Client == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal event: %v", err)
		return
	}
	if err := p.Client.Publish(context.Background(), p.Channel, payload).Err(); err != nil {
		log.Printf("notify: redis publish: %v", err)
	}
}
