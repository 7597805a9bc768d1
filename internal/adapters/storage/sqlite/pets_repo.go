package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-adoption-catalog/internal/domain/mood"
	"pet-adoption-catalog/internal/domain/pets"

	"gorm.io/gorm"
)

type PetsRepo struct {
	db *gorm.DB
}

func NewPetsRepo(db *gorm.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	m := toPetModel(p)
	return translatePetErr(r.db.WithContext(ctx).Create(&m).Error)
}

// Update no toca mood ni created_at.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	m := toPetModel(p)
	res := r.db.WithContext(ctx).Model(&petModel{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":           m.Name,
		"species_id":     m.SpeciesID,
		"personality_id": m.PersonalityID,
		"age":            m.Age,
		"description":    m.Description,
		"image":          m.Image,
		"adopted":        m.Adopted,
		"adoption_date":  m.AdoptionDate,
		"updated_at":     m.UpdatedAt,
	})
	res.Error = translatePetErr(res.Error)
	return expectOne(res, pets.ErrNotFound)
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	var m petModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pets.Pet{}, pets.ErrNotFound
	}
	if err != nil {
		return pets.Pet{}, err
	}
	return fromPetModel(m), nil
}

func (r *PetsRepo) ListAll(ctx context.Context) ([]pets.Pet, error) {
	var rows []petModel
	if err := r.db.WithContext(ctx).Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]pets.Pet, 0, len(rows))
	for _, m := range rows {
		out = append(out, fromPetModel(m))
	}
	return out, nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&petModel{})
	return expectOne(res, pets.ErrNotFound)
}

func (r *PetsRepo) SetAdoption(ctx context.Context, id string, adopted bool, at *time.Time) error {
	var date *time.Time
	if adopted && at != nil {
		t := at.UTC()
		date = &t
	}
	res := r.db.WithContext(ctx).Model(&petModel{}).Where("id = ?", id).Updates(map[string]any{
		"adopted":       adopted,
		"adoption_date": date,
	})
	return expectOne(res, pets.ErrNotFound)
}

func (r *PetsRepo) UpdateMood(ctx context.Context, id string, m mood.Mood) error {
	res := r.db.WithContext(ctx).Model(&petModel{}).Where("id = ?", id).Update("mood", string(m))
	return expectOne(res, pets.ErrNotFound)
}

// Se guarda todo en UTC para que el orden por created_at (texto) sea correcto.
func toPetModel(p pets.Pet) petModel {
	m := petModel{
		ID:            p.ID,
		Name:          p.Name,
		SpeciesID:     p.SpeciesID,
		PersonalityID: p.PersonalityID,
		Age:           p.Age,
		Description:   p.Description,
		Image:         p.Image,
		Mood:          string(p.Mood),
		Adopted:       p.Adopted,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
	if p.AdoptionDate != nil {
		t := p.AdoptionDate.UTC()
		m.AdoptionDate = &t
	}
	return m
}

func fromPetModel(m petModel) pets.Pet {
	return pets.Pet{
		ID:            m.ID,
		Name:          m.Name,
		SpeciesID:     m.SpeciesID,
		PersonalityID: m.PersonalityID,
		Age:           m.Age,
		Description:   m.Description,
		Image:         m.Image,
		Mood:          mood.Mood(m.Mood),
		Adopted:       m.Adopted,
		AdoptionDate:  m.AdoptionDate,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func translatePetErr(err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", pets.ErrInvalidReference, err)
	}
	return err
}

func expectOne(res *gorm.DB, notFound error) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}
