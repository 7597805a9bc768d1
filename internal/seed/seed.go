// Package seed carga el catálogo inicial (INITIALIZE_DATA / petcatalog seed).
package seed

import (
	"context"
	"errors"
	"fmt"

	"pet-adoption-catalog/internal/domain/pets"
	"pet-adoption-catalog/internal/domain/references"
	"pet-adoption-catalog/internal/platform/logger"
)

var (
	Personalities = []string{"Friendly", "Shy", "Energetic", "Calm"}
	Species       = []string{"Dog", "Cat", "Rabbit", "Bird"}
)

type samplePet struct {
	name        string
	species     string
	personality string
	age         float64
	description string
}

var samplePets = []samplePet{
	{name: "Max", species: "Dog", personality: "Friendly", age: 2, description: "A **friendly** dog who loves walks."},
	{name: "Whiskers", species: "Cat", personality: "Shy", age: 3, description: "A calm cat, a bit *shy* with strangers."},
}

type Result struct {
	// Skipped: ya había mascotas, no se tocó nada salvo los centinelas.
	Skipped      bool
	ReferencesOK int
	PetsCreated  int
}

// Run garantiza los centinelas "Unknown" y, si el catálogo está vacío,
// crea referencias y mascotas de ejemplo. Es idempotente.
func Run(ctx context.Context, refs *references.Service, petsSvc *pets.Service, log logger.Logger) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}

	for _, kind := range references.Kinds() {
		if _, err := refs.GetOrCreateUnknown(ctx, kind); err != nil {
			return Result{}, fmt.Errorf("ensure unknown %s: %w", kind, err)
		}
	}

	existing, err := petsSvc.List(ctx, pets.ListOptions{})
	if err != nil {
		return Result{}, err
	}
	if len(existing) > 0 {
		log.Info("seed skipped", map[string]any{"pets": len(existing)})
		return Result{Skipped: true}, nil
	}

	var res Result
	for kind, names := range map[references.Kind][]string{
		references.KindPersonality: Personalities,
		references.KindSpecies:     Species,
	} {
		for _, name := range names {
			if err := ensureReference(ctx, refs, kind, name); err != nil {
				return res, err
			}
			res.ReferencesOK++
		}
	}

	for _, sp := range samplePets {
		age := sp.age
		_, err := petsSvc.Create(ctx, pets.CreateInput{
			Name:        sp.name,
			Species:     references.RefInput{Name: sp.species},
			Personality: references.RefInput{Name: sp.personality},
			Age:         &age,
			Description: sp.description,
		})
		if err != nil {
			return res, fmt.Errorf("seed pet %s: %w", sp.name, err)
		}
		res.PetsCreated++
	}

	log.Info("seed completed", map[string]any{"references": res.ReferencesOK, "pets": res.PetsCreated})
	return res, nil
}

func ensureReference(ctx context.Context, refs *references.Service, kind references.Kind, name string) error {
	_, err := refs.Resolve(ctx, kind, references.RefInput{Name: name})
	if err == nil {
		return nil
	}
	if !errors.Is(err, references.ErrNotFound) {
		return err
	}

	_, err = refs.Create(ctx, kind, name)
	if err != nil && !errors.Is(err, references.ErrDuplicateName) {
		return fmt.Errorf("seed %s %s: %w", kind, name, err)
	}
	return nil
}
