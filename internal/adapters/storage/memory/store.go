package memory

import (
	"sync"

	"pet-adoption-catalog/internal/domain/events"
	"pet-adoption-catalog/internal/domain/pets"
	"pet-adoption-catalog/internal/domain/references"
)

// Store guarda todo bajo un único lock: así la reasignación de FKs y el
// borrado de una referencia son atómicos respecto de cualquier lector.
type Store struct {
	mu     sync.RWMutex
	pets   map[string]pets.Pet
	refs   map[string]references.Reference
	events map[string]events.PetEvent
}

func NewStore() *Store {
	return &Store{
		pets:   make(map[string]pets.Pet),
		refs:   make(map[string]references.Reference),
		events: make(map[string]events.PetEvent),
	}
}

func (s *Store) Pets() pets.Repository {
	return &petRepo{s: s}
}

func (s *Store) References() references.Repository {
	return &referenceRepo{s: s}
}

func (s *Store) Events() events.Repository {
	return &eventRepo{s: s}
}
