package references

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-adoption-catalog/internal/domain/events"
	"pet-adoption-catalog/internal/platform/logger"
	"pet-adoption-catalog/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrProtected: el centinela "Unknown" no se borra ni se renombra.
	ErrProtected = errors.New("protected record")
)

// Activity es lo que el registry necesita del historial de eventos.
type Activity interface {
	Record(ctx context.Context, petID string, typ events.EventType, src events.Source, title, notes string)
}

// Service es el Reference Registry: CRUD de Species/Personality, centinela
// "Unknown" y la regla de reasignación al borrar.
type Service struct {
	repo     Repository
	activity Activity
	metrics  *metrics.Metrics
	log      logger.Logger
}

type Option func(*Service)

func WithActivity(a Activity) Option {
	return func(s *Service) { s.activity = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, kind Kind) ([]Reference, error) {
	if !kind.Valid() {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, kind)
}

func (s *Service) GetByID(ctx context.Context, kind Kind, id string) (Reference, error) {
	id = strings.TrimSpace(id)
	if !kind.Valid() || id == "" {
		return Reference{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, kind, id)
}

func (s *Service) Create(ctx context.Context, kind Kind, name string) (Reference, error) {
	name = strings.TrimSpace(name)
	if !kind.Valid() || name == "" {
		return Reference{}, ErrInvalidInput
	}

	ref := Reference{
		ID:   uuid.NewString(),
		Kind: kind,
		Name: name,
	}
	if err := s.repo.Create(ctx, ref); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// Rename cambia el nombre. El centinela no se renombra (perdería su identidad).
func (s *Service) Rename(ctx context.Context, kind Kind, id, name string) (Reference, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Reference{}, ErrInvalidInput
	}

	ref, err := s.GetByID(ctx, kind, id)
	if err != nil {
		return Reference{}, err
	}
	if ref.IsUnknown() {
		return Reference{}, ErrProtected
	}
	if ref.Name == name {
		return ref, nil
	}

	ref.Name = name
	if err := s.repo.Update(ctx, ref); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// GetOrCreateUnknown es idempotente y seguro ante llamadas concurrentes:
// find -> create; si el create choca con unique(kind, name) es porque otro
// caller lo creó primero, así que se vuelve a leer.
func (s *Service) GetOrCreateUnknown(ctx context.Context, kind Kind) (Reference, error) {
	if !kind.Valid() {
		return Reference{}, ErrInvalidInput
	}

	ref, err := s.repo.GetByName(ctx, kind, UnknownName)
	if err == nil {
		return ref, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Reference{}, err
	}

	ref = Reference{
		ID:   uuid.NewString(),
		Kind: kind,
		Name: UnknownName,
	}
	err = s.repo.Create(ctx, ref)
	switch {
	case err == nil:
		s.log.Info("unknown sentinel created", map[string]any{"kind": kind.String(), "id": ref.ID})
		return ref, nil
	case errors.Is(err, ErrDuplicateName):
		return s.repo.GetByName(ctx, kind, UnknownName)
	default:
		return Reference{}, err
	}
}

// Resolve lleva un RefInput (id o nombre) al registro canónico existente.
func (s *Service) Resolve(ctx context.Context, kind Kind, in RefInput) (Reference, error) {
	if !kind.Valid() || in.Empty() {
		return Reference{}, ErrInvalidInput
	}
	if id := strings.TrimSpace(in.ID); id != "" {
		return s.repo.GetByID(ctx, kind, id)
	}
	return s.repo.GetByName(ctx, kind, strings.TrimSpace(in.Name))
}

// Delete borra una referencia reasignando antes sus mascotas al centinela.
// Orden fijo: centinela -> reasignar -> borrar (las dos últimas en una transacción
// del storage). Si algo falla, el borrado no ocurre.
// Devuelve los ids de mascotas reasignadas.
func (s *Service) Delete(ctx context.Context, kind Kind, id string) ([]string, error) {
	ref, err := s.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if ref.IsUnknown() {
		return nil, ErrProtected
	}

	unknown, err := s.GetOrCreateUnknown(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("resolve unknown %s: %w", kind, err)
	}

	petIDs, err := s.repo.ReassignAndDelete(ctx, kind, ref.ID, unknown.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.ReferenceDeleted(kind.String(), len(petIDs))
	s.log.Info("reference deleted", map[string]any{
		"kind":       kind.String(),
		"id":         ref.ID,
		"name":       ref.Name,
		"reassigned": len(petIDs),
	})

	if s.activity != nil {
		title := fmt.Sprintf("%s reassigned to %s", kind, UnknownName)
		notes := fmt.Sprintf("%s %q was deleted", kind, ref.Name)
		for _, petID := range petIDs {
			s.activity.Record(ctx, petID, events.EventTypeReferenceReassigned, events.SourceRegistry, title, notes)
		}
	}

	return petIDs, nil
}
