// Package storagetest es la suite de contrato que comparten los adapters de storage.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pet-adoption-catalog/internal/domain/events"
	"pet-adoption-catalog/internal/domain/mood"
	"pet-adoption-catalog/internal/domain/pets"
	"pet-adoption-catalog/internal/domain/references"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Repos es lo que cada adapter entrega, sobre un storage vacío.
type Repos struct {
	Pets       pets.Repository
	References references.Repository
	Events     events.Repository
}

// Factory crea un storage vacío por subtest.
type Factory func(t *testing.T) Repos

// tolerancia para storages con precisión de microsegundos
const precision = time.Millisecond

var base = time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

func Run(t *testing.T, newRepos Factory) {
	t.Run("references", func(t *testing.T) { testReferences(t, newRepos(t)) })
	t.Run("reference name is unique per kind", func(t *testing.T) { testUniqueName(t, newRepos(t)) })
	t.Run("concurrent unknown creation", func(t *testing.T) { testConcurrentUnknown(t, newRepos(t)) })
	t.Run("reassign and delete", func(t *testing.T) { testReassignAndDelete(t, newRepos(t)) })
	t.Run("write with a deleted reference id is rejected", func(t *testing.T) { testDanglingReferenceWrite(t, newRepos(t)) })
	t.Run("pets crud", func(t *testing.T) { testPetsCRUD(t, newRepos(t)) })
	t.Run("pets field updates", func(t *testing.T) { testPetFieldUpdates(t, newRepos(t)) })
	t.Run("events", func(t *testing.T) { testEvents(t, newRepos(t)) })
}

func newRef(kind references.Kind, name string) references.Reference {
	return references.Reference{ID: uuid.NewString(), Kind: kind, Name: name}
}

func mustRef(t *testing.T, r Repos, kind references.Kind, name string) references.Reference {
	t.Helper()
	ref := newRef(kind, name)
	require.NoError(t, r.References.Create(context.Background(), ref))
	return ref
}

func newPet(name string, species, personality references.Reference, createdAt time.Time) pets.Pet {
	return pets.Pet{
		ID:            uuid.NewString(),
		Name:          name,
		SpeciesID:     species.ID,
		PersonalityID: personality.ID,
		Age:           2.5,
		Description:   "good **dog**",
		Mood:          mood.Happy,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func testReferences(t *testing.T, r Repos) {
	ctx := context.Background()

	dog := mustRef(t, r, references.KindSpecies, "Dog")
	_ = mustRef(t, r, references.KindSpecies, "Cat")
	_ = mustRef(t, r, references.KindPersonality, "Shy")

	got, err := r.References.GetByID(ctx, references.KindSpecies, dog.ID)
	require.NoError(t, err)
	assert.Equal(t, dog, got)

	got, err = r.References.GetByName(ctx, references.KindSpecies, "Dog")
	require.NoError(t, err)
	assert.Equal(t, dog.ID, got.ID)

	// el kind forma parte de la identidad
	_, err = r.References.GetByID(ctx, references.KindPersonality, dog.ID)
	assert.ErrorIs(t, err, references.ErrNotFound)
	_, err = r.References.GetByName(ctx, references.KindSpecies, "Bird")
	assert.ErrorIs(t, err, references.ErrNotFound)

	list, err := r.References.List(ctx, references.KindSpecies)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Cat", list[0].Name)
	assert.Equal(t, "Dog", list[1].Name)

	dog.Name = "Hound"
	require.NoError(t, r.References.Update(ctx, dog))
	got, err = r.References.GetByID(ctx, references.KindSpecies, dog.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hound", got.Name)

	err = r.References.Update(ctx, newRef(references.KindSpecies, "Ghost"))
	assert.ErrorIs(t, err, references.ErrNotFound)
}

func testUniqueName(t *testing.T, r Repos) {
	ctx := context.Background()

	dog := mustRef(t, r, references.KindSpecies, "Dog")
	cat := mustRef(t, r, references.KindSpecies, "Cat")

	err := r.References.Create(ctx, newRef(references.KindSpecies, "Dog"))
	assert.ErrorIs(t, err, references.ErrDuplicateName)

	// otro kind, mismo nombre: válido
	require.NoError(t, r.References.Create(ctx, newRef(references.KindPersonality, "Dog")))

	cat.Name = dog.Name
	err = r.References.Update(ctx, cat)
	assert.ErrorIs(t, err, references.ErrDuplicateName)
}

func testConcurrentUnknown(t *testing.T, r Repos) {
	svc := references.NewService(r.References)

	const callers = 16
	ids := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref, err := svc.GetOrCreateUnknown(context.Background(), references.KindPersonality)
			ids[i], errs[i] = ref.ID, err
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	list, err := r.References.List(context.Background(), references.KindPersonality)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, references.UnknownName, list[0].Name)
}

func testReassignAndDelete(t *testing.T, r Repos) {
	ctx := context.Background()

	dog := mustRef(t, r, references.KindSpecies, "Dog")
	cat := mustRef(t, r, references.KindSpecies, "Cat")
	unknown := mustRef(t, r, references.KindSpecies, references.UnknownName)
	friendly := mustRef(t, r, references.KindPersonality, "Friendly")

	var dogIDs []string
	for i := 0; i < 3; i++ {
		p := newPet(fmt.Sprintf("dog-%d", i), dog, friendly, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, r.Pets.Create(ctx, p))
		dogIDs = append(dogIDs, p.ID)
	}
	whiskers := newPet("Whiskers", cat, friendly, base)
	require.NoError(t, r.Pets.Create(ctx, whiskers))

	moved, err := r.References.ReassignAndDelete(ctx, references.KindSpecies, dog.ID, unknown.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, dogIDs, moved)

	for _, id := range dogIDs {
		p, err := r.Pets.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, unknown.ID, p.SpeciesID)
		assert.Equal(t, friendly.ID, p.PersonalityID, "other kind must not change")
	}
	p, err := r.Pets.GetByID(ctx, whiskers.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, p.SpeciesID)

	_, err = r.References.GetByID(ctx, references.KindSpecies, dog.ID)
	assert.ErrorIs(t, err, references.ErrNotFound)

	// repetir el borrado: not found, sin cambios
	_, err = r.References.ReassignAndDelete(ctx, references.KindSpecies, dog.ID, unknown.ID)
	assert.ErrorIs(t, err, references.ErrNotFound)

	// sin mascotas que reasignar
	moved, err = r.References.ReassignAndDelete(ctx, references.KindPersonality, mustRef(t, r, references.KindPersonality, "Calm").ID, friendly.ID)
	require.NoError(t, err)
	assert.Empty(t, moved)
}

func testDanglingReferenceWrite(t *testing.T, r Repos) {
	ctx := context.Background()

	dog := mustRef(t, r, references.KindSpecies, "Dog")
	unknown := mustRef(t, r, references.KindSpecies, references.UnknownName)
	friendly := mustRef(t, r, references.KindPersonality, "Friendly")

	p := newPet("Rex", dog, friendly, base)
	require.NoError(t, r.Pets.Create(ctx, p))

	_, err := r.References.ReassignAndDelete(ctx, references.KindSpecies, dog.ID, unknown.ID)
	require.NoError(t, err)

	// p todavía apunta a dog: la escritura debe fallar sin tocar la fila
	stale := p
	stale.Name = "Rex II"
	stale.UpdatedAt = base.Add(time.Minute)
	assert.ErrorIs(t, r.Pets.Update(ctx, stale), pets.ErrInvalidReference)

	got, err := r.Pets.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, unknown.ID, got.SpeciesID)
	assert.Equal(t, "Rex", got.Name)

	// referencia de otro kind tampoco vale
	wrongKind := newPet("Mix", friendly, friendly, base)
	assert.ErrorIs(t, r.Pets.Create(ctx, wrongKind), pets.ErrInvalidReference)

	ghost := newPet("Ghost", dog, friendly, base)
	assert.ErrorIs(t, r.Pets.Create(ctx, ghost), pets.ErrInvalidReference)
	_, err = r.Pets.GetByID(ctx, ghost.ID)
	assert.ErrorIs(t, err, pets.ErrNotFound)
}

func testPetsCRUD(t *testing.T, r Repos) {
	ctx := context.Background()

	dog := mustRef(t, r, references.KindSpecies, "Dog")
	cat := mustRef(t, r, references.KindSpecies, "Cat")
	shy := mustRef(t, r, references.KindPersonality, "Shy")

	later := newPet("Later", dog, shy, base.Add(time.Hour))
	first := newPet("First", dog, shy, base)
	require.NoError(t, r.Pets.Create(ctx, later))
	require.NoError(t, r.Pets.Create(ctx, first))

	got, err := r.Pets.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, got.Name)
	assert.Equal(t, first.Age, got.Age)
	assert.Equal(t, first.Description, got.Description)
	assert.Equal(t, mood.Happy, got.Mood)
	assert.False(t, got.Adopted)
	assert.Nil(t, got.AdoptionDate)
	assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, precision)

	all, err := r.Pets.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID, "ListAll orders by created_at asc")
	assert.Equal(t, later.ID, all[1].ID)

	// Update reemplaza campos editables y respeta mood/created_at
	adoptedAt := base.Add(2 * time.Hour)
	upd := got
	upd.Name = "Renamed"
	upd.SpeciesID = cat.ID
	upd.Image = "https://example.org/first.png"
	upd.Adopted = true
	upd.AdoptionDate = &adoptedAt
	upd.Mood = mood.Sad
	upd.CreatedAt = base.Add(48 * time.Hour)
	upd.UpdatedAt = adoptedAt
	require.NoError(t, r.Pets.Update(ctx, upd))

	got, err = r.Pets.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, cat.ID, got.SpeciesID)
	assert.Equal(t, upd.Image, got.Image)
	assert.True(t, got.Adopted)
	require.NotNil(t, got.AdoptionDate)
	assert.WithinDuration(t, adoptedAt, *got.AdoptionDate, precision)
	assert.Equal(t, mood.Happy, got.Mood, "Update must not touch mood")
	assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, precision, "Update must not touch created_at")

	missing := newPet("Ghost", dog, shy, base)
	assert.ErrorIs(t, r.Pets.Update(ctx, missing), pets.ErrNotFound)
	_, err = r.Pets.GetByID(ctx, missing.ID)
	assert.ErrorIs(t, err, pets.ErrNotFound)

	require.NoError(t, r.Pets.Delete(ctx, first.ID))
	assert.ErrorIs(t, r.Pets.Delete(ctx, first.ID), pets.ErrNotFound)

	all, err = r.Pets.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func testPetFieldUpdates(t *testing.T, r Repos) {
	ctx := context.Background()

	dog := mustRef(t, r, references.KindSpecies, "Dog")
	shy := mustRef(t, r, references.KindPersonality, "Shy")
	p := newPet("Max", dog, shy, base)
	require.NoError(t, r.Pets.Create(ctx, p))

	at := base.Add(time.Hour)
	require.NoError(t, r.Pets.SetAdoption(ctx, p.ID, true, &at))
	require.NoError(t, r.Pets.UpdateMood(ctx, p.ID, mood.Excited))

	got, err := r.Pets.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Adopted)
	require.NotNil(t, got.AdoptionDate)
	assert.WithinDuration(t, at, *got.AdoptionDate, precision)
	assert.Equal(t, mood.Excited, got.Mood, "field updates must not clobber each other")
	assert.Equal(t, "Max", got.Name)

	require.NoError(t, r.Pets.SetAdoption(ctx, p.ID, false, nil))
	got, err = r.Pets.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Adopted)
	assert.Nil(t, got.AdoptionDate)

	assert.ErrorIs(t, r.Pets.SetAdoption(ctx, "missing", true, &at), pets.ErrNotFound)
	assert.ErrorIs(t, r.Pets.UpdateMood(ctx, "missing", mood.Sad), pets.ErrNotFound)
}

func testEvents(t *testing.T, r Repos) {
	ctx := context.Background()
	petID := uuid.NewString()

	mk := func(typ events.EventType, occurred time.Time, title string) events.PetEvent {
		return events.PetEvent{
			ID:         uuid.NewString(),
			PetID:      petID,
			Type:       typ,
			Source:     events.SourceAPI,
			OccurredAt: occurred,
			RecordedAt: occurred,
			Title:      title,
		}
	}

	created := mk(events.EventTypePetCreated, base, "Pet created")
	adopted := mk(events.EventTypePetAdopted, base.Add(time.Hour), "Pet adopted")
	moodChanged := mk(events.EventTypeMoodChanged, base.Add(2*time.Hour), "Mood changed to Excited")
	other := mk(events.EventTypePetCreated, base, "other pet")
	other.PetID = uuid.NewString()

	for _, e := range []events.PetEvent{created, adopted, moodChanged, other} {
		require.NoError(t, r.Events.Create(ctx, e))
	}

	ids := func(items []events.PetEvent) []string {
		out := make([]string, 0, len(items))
		for _, e := range items {
			out = append(out, e.ID)
		}
		return out
	}

	got, err := r.Events.ListByPet(ctx, petID, events.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{moodChanged.ID, adopted.ID, created.ID}, ids(got), "newest first")

	got, err = r.Events.ListByPet(ctx, petID, events.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = r.Events.ListByPet(ctx, petID, events.ListFilter{Types: []events.EventType{events.EventTypePetAdopted}})
	require.NoError(t, err)
	assert.Equal(t, []string{adopted.ID}, ids(got))

	from := base.Add(30 * time.Minute)
	to := base.Add(90 * time.Minute)
	got, err = r.Events.ListByPet(ctx, petID, events.ListFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{adopted.ID}, ids(got))

	got, err = r.Events.ListByPet(ctx, petID, events.ListFilter{Query: "excited"})
	require.NoError(t, err)
	assert.Equal(t, []string{moodChanged.ID}, ids(got))
}
