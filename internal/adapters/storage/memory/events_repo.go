package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-adoption-catalog/internal/domain/events"
)

type eventRepo struct {
	s *Store
}

func (r *eventRepo) Create(ctx context.Context, e events.PetEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := r.s.events[e.ID]; exists {
		return errors.New("event already exists")
	}

	r.s.events[e.ID] = e
	return nil
}

func (r *eventRepo) ListByPet(ctx context.Context, petID string, filter events.ListFilter) ([]events.PetEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	limit := filter.NormalizedLimit()
	q := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]events.PetEvent, 0)

	for _, e := range r.s.events {
		if e.PetID != petID {
			continue
		}

		if len(filter.Types) > 0 {
			ok := false
			for _, t := range filter.Types {
				if e.Type == t {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}

		// occurred_at en [from, to]
		if filter.From != nil && e.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.OccurredAt.After(*filter.To) {
			continue
		}

		if q != "" {
			hay := strings.ToLower(e.Title + " " + e.Notes)
			if !strings.Contains(hay, q) {
				continue
			}
		}

		out = append(out, e)
	}

	// más reciente primero; recorded_at desempata eventos del mismo instante
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
