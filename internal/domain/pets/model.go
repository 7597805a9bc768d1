package pets

import (
	"time"

	"pet-adoption-catalog/internal/domain/mood"
	"pet-adoption-catalog/internal/domain/references"
)

// Pet es el registro persistido. Species/Personality se guardan como FK.
type Pet struct {
	ID string

	Name          string
	SpeciesID     string
	PersonalityID string
	Age           float64

	Description string
	Image       string // URL opcional

	// Mood persistido: sólo cache para el scheduler y lectores directos del store.
	// Las lecturas de la API siempre lo recalculan.
	Mood mood.Mood

	Adopted      bool
	AdoptionDate *time.Time // != nil <=> Adopted

	CreatedAt time.Time
	UpdatedAt time.Time
}

// View es lo que devuelve la fachada: referencias resueltas y mood en vivo.
type View struct {
	Pet         Pet
	Species     references.Reference
	Personality references.Reference
	Mood        mood.Mood
}

// SortOption replica los órdenes que ofrece el catálogo.
// @Enum newest, oldest, name-asc, name-desc, adopted-first, unadopted-first, species-asc, personality-asc
type SortOption string

const (
	SortDefault        SortOption = ""
	SortNewest         SortOption = "newest"
	SortOldest         SortOption = "oldest"
	SortNameAsc        SortOption = "name-asc"
	SortNameDesc       SortOption = "name-desc"
	SortAdoptedFirst   SortOption = "adopted-first"
	SortUnadoptedFirst SortOption = "unadopted-first"
	SortSpeciesAsc     SortOption = "species-asc"
	SortPersonalityAsc SortOption = "personality-asc"
)

func (o SortOption) Valid() bool {
	switch o {
	case SortDefault, SortNewest, SortOldest, SortNameAsc, SortNameDesc,
		SortAdoptedFirst, SortUnadoptedFirst, SortSpeciesAsc, SortPersonalityAsc:
		return true
	}
	return false
}

// ListOptions: todos opcionales; el zero value equivale a "todas".
type ListOptions struct {
	Mood          mood.Mood
	Adopted       *bool
	SpeciesID     string
	PersonalityID string
	Query         string // contiene en name, case-insensitive
	Sort          SortOption
}
