package events

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e PetEvent) error
	ListByPet(ctx context.Context, petID string, filter ListFilter) ([]PetEvent, error)
}

// Publisher reenvía eventos a consumidores externos (p.ej. Redis pub/sub).
type Publisher interface {
	Publish(ctx context.Context, e PetEvent) error
}

type ListFilter struct {
	Types []EventType
	From  *time.Time
	To    *time.Time
	Query string
	Limit int
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// NormalizedLimit aplica default y tope.
func (f ListFilter) NormalizedLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}
