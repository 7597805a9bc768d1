package sqlite

import (
	"context"
	"errors"
	"fmt"

	"pet-adoption-catalog/internal/domain/references"

	"gorm.io/gorm"
)

type ReferencesRepo struct {
	db *gorm.DB
}

func NewReferencesRepo(db *gorm.DB) *ReferencesRepo {
	return &ReferencesRepo{db: db}
}

func tableFor(kind references.Kind) (table, fkColumn string, err error) {
	switch kind {
	case references.KindSpecies:
		return speciesModel{}.TableName(), "species_id", nil
	case references.KindPersonality:
		return personalityModel{}.TableName(), "personality_id", nil
	default:
		return "", "", fmt.Errorf("unknown reference kind %q", kind)
	}
}

func (r *ReferencesRepo) Create(ctx context.Context, ref references.Reference) error {
	table, _, err := tableFor(ref.Kind)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Table(table).Create(&refRow{ID: ref.ID, Name: ref.Name}).Error
	if isUniqueViolation(err) {
		return references.ErrDuplicateName
	}
	return err
}

func (r *ReferencesRepo) Update(ctx context.Context, ref references.Reference) error {
	table, _, err := tableFor(ref.Kind)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Table(table).Where("id = ?", ref.ID).Update("name", ref.Name)
	if isUniqueViolation(res.Error) {
		return references.ErrDuplicateName
	}
	return expectOne(res, references.ErrNotFound)
}

func (r *ReferencesRepo) GetByID(ctx context.Context, kind references.Kind, id string) (references.Reference, error) {
	return r.getOne(ctx, kind, "id = ?", id)
}

func (r *ReferencesRepo) GetByName(ctx context.Context, kind references.Kind, name string) (references.Reference, error) {
	return r.getOne(ctx, kind, "name = ?", name)
}

func (r *ReferencesRepo) getOne(ctx context.Context, kind references.Kind, where string, arg string) (references.Reference, error) {
	table, _, err := tableFor(kind)
	if err != nil {
		return references.Reference{}, err
	}

	var row refRow
	err = r.db.WithContext(ctx).Table(table).Where(where, arg).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return references.Reference{}, references.ErrNotFound
	}
	if err != nil {
		return references.Reference{}, err
	}
	return references.Reference{ID: row.ID, Kind: kind, Name: row.Name}, nil
}

func (r *ReferencesRepo) List(ctx context.Context, kind references.Kind) ([]references.Reference, error) {
	table, _, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var rows []refRow
	if err := r.db.WithContext(ctx).Table(table).Order("name asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]references.Reference, 0, len(rows))
	for _, row := range rows {
		out = append(out, references.Reference{ID: row.ID, Kind: kind, Name: row.Name})
	}
	return out, nil
}

// ReassignAndDelete: existencia, reasignación y borrado en una sola transacción.
func (r *ReferencesRepo) ReassignAndDelete(ctx context.Context, kind references.Kind, fromID, toID string) ([]string, error) {
	table, fk, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	moved := make([]string, 0)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var from refRow
		if err := tx.Table(table).Where("id = ?", fromID).Take(&from).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return references.ErrNotFound
			}
			return err
		}

		if err := tx.Model(&petModel{}).Where(fk+" = ?", fromID).Order("id asc").Pluck("id", &moved).Error; err != nil {
			return err
		}
		if len(moved) > 0 {
			if err := tx.Model(&petModel{}).Where(fk+" = ?", fromID).Update(fk, toID).Error; err != nil {
				return fmt.Errorf("reassign pets: %w", err)
			}
		}

		return tx.Table(table).Where("id = ?", fromID).Delete(&refRow{}).Error
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}
