package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption-catalog/internal/domain/mood"
	"pet-adoption-catalog/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, name,
	species_id, personality_id,
	age, description, image,
	mood, adopted, adoption_date,
	created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		p.ID,
		p.Name,
		p.SpeciesID,
		p.PersonalityID,
		p.Age,
		p.Description,
		p.Image,
		string(p.Mood),
		p.Adopted,
		toNullTime(p.AdoptionDate),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return translatePetErr(err)
}

// Update no toca mood ni created_at.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species_id = $3,
			personality_id = $4,
			age = $5,
			description = $6,
			image = $7,
			adopted = $8,
			adoption_date = $9,
			updated_at = $10
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.SpeciesID,
		p.PersonalityID,
		p.Age,
		p.Description,
		p.Image,
		p.Adopted,
		toNullTime(p.AdoptionDate),
		p.UpdatedAt,
	)
	return expectOne(res, translatePetErr(err), pets.ErrNotFound)
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)

	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) ListAll(ctx context.Context) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+petColumns+` FROM pets ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	return expectOne(res, err, pets.ErrNotFound)
}

func (r *PetsRepo) SetAdoption(ctx context.Context, id string, adopted bool, at *time.Time) error {
	if !adopted {
		at = nil
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets SET adopted = $2, adoption_date = $3 WHERE id = $1
	`, id, adopted, toNullTime(at))
	return expectOne(res, err, pets.ErrNotFound)
}

func (r *PetsRepo) UpdateMood(ctx context.Context, id string, m mood.Mood) error {
	res, err := r.db.ExecContext(ctx, `UPDATE pets SET mood = $2 WHERE id = $1`, id, string(m))
	return expectOne(res, err, pets.ErrNotFound)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPet(s scanner) (pets.Pet, error) {
	var p pets.Pet
	var m string
	var ad sql.NullTime
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&p.SpeciesID,
		&p.PersonalityID,
		&p.Age,
		&p.Description,
		&p.Image,
		&m,
		&p.Adopted,
		&ad,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Mood = mood.Mood(m)
	if ad.Valid {
		t := ad.Time
		p.AdoptionDate = &t
	}
	return p, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// expectOne traduce "0 filas afectadas" al ErrNotFound del dominio.
func translatePetErr(err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", pets.ErrInvalidReference, err)
	}
	return err
}

func expectOne(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notFound
	}
	return nil
}
