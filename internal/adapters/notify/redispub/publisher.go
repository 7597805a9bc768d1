// Package redispub reenvía el historial de actividad de las mascotas a
// Redis Pub/Sub, para consumidores externos (notificaciones, dashboards).
package redispub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pet-adoption-catalog/internal/domain/events"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespacing por defecto de los canales.
const DefaultPrefix = "petcatalog"

// Publisher implementa events.Publisher.
// Entrega at-most-once: si nadie está suscripto el mensaje se pierde.
type Publisher struct {
	rdb    *redis.Client
	prefix string
}

// Message es el JSON que se publica en <prefix>:events.
type Message struct {
	ID         string           `json:"id"`
	PetID      string           `json:"pet_id"`
	Type       events.EventType `json:"type"`
	Source     events.Source    `json:"source"`
	OccurredAt time.Time        `json:"occurred_at"`
	RecordedAt time.Time        `json:"recorded_at"`
	Title      string           `json:"title"`
	Notes      string           `json:"notes,omitempty"`
}

// New crea el publisher. prefix vacío usa DefaultPrefix.
func New(redisOpts *redis.Options, prefix string) (*Publisher, error) {
	if redisOpts == nil {
		return nil, fmt.Errorf("redis options cannot be nil")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Publisher{
		rdb:    redis.NewClient(redisOpts),
		prefix: prefix,
	}, nil
}

// NewFromURL acepta redis://[:password@]host:port/db.
func NewFromURL(url, prefix string) (*Publisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return New(opts, prefix)
}

// Channel devuelve el canal de eventos.
func (p *Publisher) Channel() string {
	return p.prefix + ":events"
}

func (p *Publisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}

func (p *Publisher) Publish(ctx context.Context, e events.PetEvent) error {
	payload, err := json.Marshal(Message{
		ID:         e.ID,
		PetID:      e.PetID,
		Type:       e.Type,
		Source:     e.Source,
		OccurredAt: e.OccurredAt,
		RecordedAt: e.RecordedAt,
		Title:      e.Title,
		Notes:      e.Notes,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal pet event: %w", err)
	}

	if err := p.rdb.Publish(ctx, p.Channel(), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish pet event: %w", err)
	}
	return nil
}
