package seed

import (
	"context"
	"testing"

	"pet-adoption-catalog/internal/adapters/storage/memory"
	"pet-adoption-catalog/internal/domain/pets"
	"pet-adoption-catalog/internal/domain/references"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices() (*references.Service, *pets.Service) {
	store := memory.NewStore()
	refs := references.NewService(store.References())
	return refs, pets.NewService(store.Pets(), refs)
}

func TestRun_EmptyCatalog(t *testing.T) {
	ctx := context.Background()
	refs, petsSvc := newServices()

	res, err := Run(ctx, refs, petsSvc, nil)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.PetsCreated)
	assert.Equal(t, len(Species)+len(Personalities), res.ReferencesOK)

	species, err := refs.List(ctx, references.KindSpecies)
	require.NoError(t, err)
	assert.Len(t, species, len(Species)+1, "seeded species plus Unknown")

	items, err := petsSvc.List(ctx, pets.ListOptions{Sort: pets.SortNameAsc})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Max", items[0].Pet.Name)
	assert.Equal(t, "Dog", items[0].Species.Name)
	assert.Equal(t, "Friendly", items[0].Personality.Name)
	assert.Equal(t, "Whiskers", items[1].Pet.Name)
	assert.Equal(t, "Shy", items[1].Personality.Name)
}

func TestRun_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	refs, petsSvc := newServices()

	_, err := Run(ctx, refs, petsSvc, nil)
	require.NoError(t, err)

	res, err := Run(ctx, refs, petsSvc, nil)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	items, err := petsSvc.List(ctx, pets.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRun_ReusesExistingReferences(t *testing.T) {
	ctx := context.Background()
	refs, petsSvc := newServices()

	dog, err := refs.Create(ctx, references.KindSpecies, "Dog")
	require.NoError(t, err)

	_, err = Run(ctx, refs, petsSvc, nil)
	require.NoError(t, err)

	items, err := petsSvc.List(ctx, pets.ListOptions{Sort: pets.SortNameAsc})
	require.NoError(t, err)
	assert.Equal(t, dog.ID, items[0].Species.ID)
}
