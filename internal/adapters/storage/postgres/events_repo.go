package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-adoption-catalog/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

func (r *EventsRepo) Create(ctx context.Context, e events.PetEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_events (
			id, pet_id,
			type, source,
			occurred_at, recorded_at,
			title, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.PetID,
		string(e.Type),
		string(e.Source),
		e.OccurredAt,
		e.RecordedAt,
		e.Title,
		e.Notes,
	)
	return err
}

func (r *EventsRepo) ListByPet(ctx context.Context, petID string, filter events.ListFilter) ([]events.PetEvent, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, nil
	}

	// Base query
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, pet_id,
			type, source,
			occurred_at, recorded_at,
			title, notes
		FROM pet_events
		WHERE pet_id = $1
	`)

	args := []any{petID}
	argN := 2

	// types filter
	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(t))
			argN++
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	// from/to
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	// q: búsqueda simple en title + notes
	if strings.TrimSpace(filter.Query) != "" {
		sb.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR notes ILIKE $%d)", argN, argN))
		args = append(args, "%"+strings.TrimSpace(filter.Query)+"%")
		argN++
	}

	sb.WriteString(" ORDER BY occurred_at DESC, recorded_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, filter.NormalizedLimit())

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.PetEvent, 0)
	for rows.Next() {
		var e events.PetEvent
		var typ, source string

		if err := rows.Scan(
			&e.ID,
			&e.PetID,
			&typ,
			&source,
			&e.OccurredAt,
			&e.RecordedAt,
			&e.Title,
			&e.Notes,
		); err != nil {
			return nil, err
		}

		e.Type = events.EventType(typ)
		e.Source = events.Source(source)

		out = append(out, e)
	}

	return out, rows.Err()
}
