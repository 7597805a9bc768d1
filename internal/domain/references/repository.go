package references

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateName lo devuelve el storage cuando se viola unique(kind, name).
	ErrDuplicateName = errors.New("duplicate name")
)

type Repository interface {
	Create(ctx context.Context, ref Reference) error
	Update(ctx context.Context, ref Reference) error
	GetByID(ctx context.Context, kind Kind, id string) (Reference, error)
	GetByName(ctx context.Context, kind Kind, name string) (Reference, error)
	List(ctx context.Context, kind Kind) ([]Reference, error)

	// ReassignAndDelete reescribe la FK (species_id / personality_id) de todas las
	// mascotas que apuntan a fromID hacia toID y borra fromID, en una sola transacción.
	// Devuelve los ids de las mascotas reasignadas.
	// Si fromID ya no existe devuelve ErrNotFound y no modifica nada.
	ReassignAndDelete(ctx context.Context, kind Kind, fromID, toID string) ([]string, error)
}
