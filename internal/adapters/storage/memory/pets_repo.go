package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pet-adoption-catalog/internal/domain/mood"
	"pet-adoption-catalog/internal/domain/pets"
	"pet-adoption-catalog/internal/domain/references"
)

type petRepo struct {
	s *Store
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.s.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	if err := r.checkRefsLocked(p); err != nil {
		return err
	}
	r.s.pets[p.ID] = clonePet(p)
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, exists := r.s.pets[p.ID]
	if !exists {
		return pets.ErrNotFound
	}
	if err := r.checkRefsLocked(p); err != nil {
		return err
	}

	// mood y created_at no se tocan desde Update
	p.Mood = cur.Mood
	p.CreatedAt = cur.CreatedAt
	r.s.pets[p.ID] = clonePet(p)
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return clonePet(p), nil
}

func (r *petRepo) ListAll(ctx context.Context) ([]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]pets.Pet, 0, len(r.s.pets))
	for _, p := range r.s.pets {
		out = append(out, clonePet(p))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.pets[id]; !ok {
		return pets.ErrNotFound
	}
	delete(r.s.pets, id)
	return nil
}

func (r *petRepo) SetAdoption(ctx context.Context, id string, adopted bool, at *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.pets[id]
	if !ok {
		return pets.ErrNotFound
	}
	p.Adopted = adopted
	p.AdoptionDate = nil
	if adopted && at != nil {
		t := *at
		p.AdoptionDate = &t
	}
	r.s.pets[id] = p
	return nil
}

func (r *petRepo) UpdateMood(ctx context.Context, id string, m mood.Mood) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.pets[id]
	if !ok {
		return pets.ErrNotFound
	}
	p.Mood = m
	r.s.pets[id] = p
	return nil
}

// checkRefsLocked valida las FKs bajo el mismo lock que usa ReassignAndDelete.
func (r *petRepo) checkRefsLocked(p pets.Pet) error {
	for kind, id := range map[references.Kind]string{
		references.KindSpecies:     p.SpeciesID,
		references.KindPersonality: p.PersonalityID,
	} {
		ref, ok := r.s.refs[id]
		if !ok || ref.Kind != kind {
			return fmt.Errorf("%w: %s %q", pets.ErrInvalidReference, kind, id)
		}
	}
	return nil
}

// clonePet evita compartir el puntero de AdoptionDate con el caller.
func clonePet(p pets.Pet) pets.Pet {
	if p.AdoptionDate != nil {
		t := *p.AdoptionDate
		p.AdoptionDate = &t
	}
	return p
}
