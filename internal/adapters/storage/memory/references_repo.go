package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-adoption-catalog/internal/domain/references"
)

type referenceRepo struct {
	s *Store
}

func (r *referenceRepo) Create(ctx context.Context, ref references.Reference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(ref.ID) == "" {
		return errors.New("reference id required")
	}
	if _, exists := r.s.refs[ref.ID]; exists {
		return errors.New("reference already exists")
	}
	if r.nameTakenLocked(ref) {
		return references.ErrDuplicateName
	}
	r.s.refs[ref.ID] = ref
	return nil
}

func (r *referenceRepo) Update(ctx context.Context, ref references.Reference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.refs[ref.ID]
	if !ok || cur.Kind != ref.Kind {
		return references.ErrNotFound
	}
	if r.nameTakenLocked(ref) {
		return references.ErrDuplicateName
	}
	r.s.refs[ref.ID] = ref
	return nil
}

func (r *referenceRepo) GetByID(ctx context.Context, kind references.Kind, id string) (references.Reference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ref, ok := r.s.refs[id]
	if !ok || ref.Kind != kind {
		return references.Reference{}, references.ErrNotFound
	}
	return ref, nil
}

func (r *referenceRepo) GetByName(ctx context.Context, kind references.Kind, name string) (references.Reference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, ref := range r.s.refs {
		if ref.Kind == kind && ref.Name == name {
			return ref, nil
		}
	}
	return references.Reference{}, references.ErrNotFound
}

func (r *referenceRepo) List(ctx context.Context, kind references.Kind) ([]references.Reference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]references.Reference, 0)
	for _, ref := range r.s.refs {
		if ref.Kind == kind {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *referenceRepo) ReassignAndDelete(ctx context.Context, kind references.Kind, fromID, toID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	from, ok := r.s.refs[fromID]
	if !ok || from.Kind != kind {
		return nil, references.ErrNotFound
	}
	if to, ok := r.s.refs[toID]; !ok || to.Kind != kind {
		return nil, references.ErrNotFound
	}

	moved := make([]string, 0)
	for id, p := range r.s.pets {
		switch {
		case kind == references.KindSpecies && p.SpeciesID == fromID:
			p.SpeciesID = toID
		case kind == references.KindPersonality && p.PersonalityID == fromID:
			p.PersonalityID = toID
		default:
			continue
		}
		r.s.pets[id] = p
		moved = append(moved, id)
	}
	delete(r.s.refs, fromID)

	sort.Strings(moved)
	return moved, nil
}

// unique(kind, name)
func (r *referenceRepo) nameTakenLocked(ref references.Reference) bool {
	for _, existing := range r.s.refs {
		if existing.ID != ref.ID && existing.Kind == ref.Kind && existing.Name == ref.Name {
			return true
		}
	}
	return false
}
