package events

import "time"

// PetEvent es una entrada del historial de actividad de una mascota.
// No se borra cuando se borra la mascota.
type PetEvent struct {
	ID    string
	PetID string

	Type   EventType
	Source Source

	OccurredAt time.Time
	RecordedAt time.Time

	Title string
	Notes string
}
