package pets

import (
	"context"
	"errors"
	"time"

	"pet-adoption-catalog/internal/domain/mood"
)

// ErrInvalidReference: species_id o personality_id no existen al momento de
// escribir (por ejemplo, la referencia se borró entre la lectura y la escritura).
// Create y Update deben devolverlo en lugar de persistir una FK colgada.
var ErrInvalidReference = errors.New("invalid reference")

type Repository interface {
	Create(ctx context.Context, p Pet) error
	// Update reemplaza los campos editables (name, refs, age, description, image,
	// adopted/adoption_date, updated_at). No toca mood ni created_at.
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	// ListAll devuelve todas las mascotas ordenadas por created_at asc.
	ListAll(ctx context.Context) ([]Pet, error)
	Delete(ctx context.Context, id string) error

	// Updates a nivel de campo: no pisan el resto del registro, así
	// adopt y el refresco de moods pueden convivir sobre la misma mascota.
	SetAdoption(ctx context.Context, id string, adopted bool, at *time.Time) error
	UpdateMood(ctx context.Context, id string, m mood.Mood) error
}
