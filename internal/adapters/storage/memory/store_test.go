package memory

import (
	"context"
	"sync"
	"testing"

	"pet-adoption-catalog/internal/adapters/storage/storagetest"
	"pet-adoption-catalog/internal/domain/pets"
	"pet-adoption-catalog/internal/domain/references"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Repos {
		s := NewStore()
		return storagetest.Repos{
			Pets:       s.Pets(),
			References: s.References(),
			Events:     s.Events(),
		}
	})
}

// deletingRefs borra una especie la primera vez que se resuelve una
// personalidad, entre la lectura y la escritura de pets.Service.Update.
type deletingRefs struct {
	references.Repository
	once   sync.Once
	delete func()
}

func (r *deletingRefs) GetByID(ctx context.Context, kind references.Kind, id string) (references.Reference, error) {
	if kind == references.KindPersonality {
		r.once.Do(r.delete)
	}
	return r.Repository.GetByID(ctx, kind, id)
}

func TestPetsService_UpdateRacingReferenceDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	refSvc := references.NewService(s.References())

	dog, err := refSvc.Create(ctx, references.KindSpecies, "Dog")
	require.NoError(t, err)
	friendly, err := refSvc.Create(ctx, references.KindPersonality, "Friendly")
	require.NoError(t, err)
	shy, err := refSvc.Create(ctx, references.KindPersonality, "Shy")
	require.NoError(t, err)

	age := 3.0
	created, err := pets.NewService(s.Pets(), refSvc).Create(ctx, pets.CreateInput{
		Name:        "Rex",
		Species:     references.RefInput{ID: dog.ID},
		Personality: references.RefInput{ID: friendly.ID},
		Age:         &age,
	})
	require.NoError(t, err)

	racing := &deletingRefs{Repository: s.References()}
	racing.delete = func() {
		_, err := refSvc.Delete(ctx, references.KindSpecies, dog.ID)
		require.NoError(t, err)
	}
	svc := pets.NewService(s.Pets(), references.NewService(racing))

	v, err := svc.Update(ctx, created.Pet.ID, pets.UpdateInput{Personality: &references.RefInput{ID: shy.ID}})
	require.NoError(t, err)

	unknown, err := s.References().GetByName(ctx, references.KindSpecies, references.UnknownName)
	require.NoError(t, err)

	stored, err := s.Pets().GetByID(ctx, created.Pet.ID)
	require.NoError(t, err)
	assert.Equal(t, unknown.ID, stored.SpeciesID)
	assert.Equal(t, shy.ID, stored.PersonalityID)
	assert.Equal(t, unknown.ID, v.Species.ID)
}

func TestPetsService_CreateWithRemovedReference(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	refSvc := references.NewService(s.References())

	dog, err := refSvc.Create(ctx, references.KindSpecies, "Dog")
	require.NoError(t, err)
	friendly, err := refSvc.Create(ctx, references.KindPersonality, "Friendly")
	require.NoError(t, err)

	racing := &deletingRefs{Repository: s.References()}
	racing.delete = func() {
		_, err := refSvc.Delete(ctx, references.KindSpecies, dog.ID)
		require.NoError(t, err)
	}
	svc := pets.NewService(s.Pets(), references.NewService(racing))

	age := 1.0
	_, err = svc.Create(ctx, pets.CreateInput{
		Name:        "Rex",
		Species:     references.RefInput{ID: dog.ID},
		Personality: references.RefInput{ID: friendly.ID},
		Age:         &age,
	})
	require.ErrorIs(t, err, pets.ErrInvalidInput)

	all, err := s.Pets().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
