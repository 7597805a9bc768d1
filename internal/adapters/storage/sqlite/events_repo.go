package sqlite

import (
	"context"
	"strings"

	"pet-adoption-catalog/internal/domain/events"

	"gorm.io/gorm"
)

type EventsRepo struct {
	db *gorm.DB
}

func NewEventsRepo(db *gorm.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

func (r *EventsRepo) Create(ctx context.Context, e events.PetEvent) error {
	return r.db.WithContext(ctx).Create(&eventModel{
		ID:         e.ID,
		PetID:      e.PetID,
		Type:       string(e.Type),
		Source:     string(e.Source),
		OccurredAt: e.OccurredAt.UTC(),
		RecordedAt: e.RecordedAt.UTC(),
		Title:      e.Title,
		Notes:      e.Notes,
	}).Error
}

func (r *EventsRepo) ListByPet(ctx context.Context, petID string, filter events.ListFilter) ([]events.PetEvent, error) {
	q := r.db.WithContext(ctx).Where("pet_id = ?", petID)

	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		q = q.Where("type IN ?", types)
	}
	if filter.From != nil {
		q = q.Where("occurred_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("occurred_at <= ?", filter.To.UTC())
	}
	if text := strings.TrimSpace(filter.Query); text != "" {
		like := "%" + text + "%"
		q = q.Where("(title LIKE ? OR notes LIKE ?)", like, like)
	}

	var rows []eventModel
	err := q.Order("occurred_at desc, recorded_at desc").
		Limit(filter.NormalizedLimit()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]events.PetEvent, 0, len(rows))
	for _, m := range rows {
		out = append(out, events.PetEvent{
			ID:         m.ID,
			PetID:      m.PetID,
			Type:       events.EventType(m.Type),
			Source:     events.Source(m.Source),
			OccurredAt: m.OccurredAt,
			RecordedAt: m.RecordedAt,
			Title:      m.Title,
			Notes:      m.Notes,
		})
	}
	return out, nil
}
