package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-catalog/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo      Repository
	publisher Publisher
	log       logger.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithPublisher agrega fan-out externo (best-effort).
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		log:  logger.Nop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	Type       EventType
	Source     Source
	OccurredAt time.Time
	Title      string
	Notes      string
}

func (s *Service) Create(ctx context.Context, petID string, in CreateInput) (PetEvent, error) {
	if strings.TrimSpace(petID) == "" {
		return PetEvent{}, ErrInvalidInput
	}
	if !KnownType(in.Type) {
		return PetEvent{}, ErrInvalidInput
	}

	now := s.now()

	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	src := in.Source
	if src == "" {
		src = SourceSystem
	}

	e := PetEvent{
		ID:         uuid.NewString(),
		PetID:      petID,
		Type:       in.Type,
		Source:     src,
		OccurredAt: occurred,
		RecordedAt: now,
		Title:      strings.TrimSpace(in.Title),
		Notes:      strings.TrimSpace(in.Notes),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return PetEvent{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.log.Warn("publish pet event failed", map[string]any{
				"event_id": e.ID,
				"pet_id":   e.PetID,
				"type":     string(e.Type),
				"error":    err.Error(),
			})
		}
	}

	return e, nil
}

// Record es la variante "fire and forget" que usan pets, references y el scheduler:
// un fallo del historial nunca rompe la operación principal, sólo se loguea.
func (s *Service) Record(ctx context.Context, petID string, typ EventType, src Source, title, notes string) {
	if s == nil {
		return
	}
	if _, err := s.Create(ctx, petID, CreateInput{
		Type:   typ,
		Source: src,
		Title:  title,
		Notes:  notes,
	}); err != nil {
		s.log.Warn("record pet event failed", map[string]any{
			"pet_id": petID,
			"type":   string(typ),
			"error":  err.Error(),
		})
	}
}

func (s *Service) ListByPet(ctx context.Context, petID string, filter ListFilter) ([]PetEvent, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	filter.Limit = filter.NormalizedLimit()
	return s.repo.ListByPet(ctx, petID, filter)
}
