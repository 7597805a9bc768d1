package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pet-adoption-catalog/internal/domain/references"
)

type ReferencesRepo struct {
	db *sql.DB
}

func NewReferencesRepo(db *sql.DB) *ReferencesRepo {
	return &ReferencesRepo{db: db}
}

// tabla y columna FK en pets por kind (valores fijos, nunca input del usuario)
func tableFor(kind references.Kind) (table, fkColumn string, err error) {
	switch kind {
	case references.KindSpecies:
		return "species", "species_id", nil
	case references.KindPersonality:
		return "personalities", "personality_id", nil
	default:
		return "", "", fmt.Errorf("unknown reference kind %q", kind)
	}
}

func (r *ReferencesRepo) Create(ctx context.Context, ref references.Reference) error {
	table, _, err := tableFor(ref.Kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO `+table+` (id, name) VALUES ($1, $2)`, ref.ID, ref.Name)
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
	res, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET name = $2 WHERE id = $1`, ref.ID, ref.Name)
	if isUniqueViolation(err) {
		return references.ErrDuplicateName
	}
	return expectOne(res, err, references.ErrNotFound)
}

func (r *ReferencesRepo) GetByID(ctx context.Context, kind references.Kind, id string) (references.Reference, error) {
	return r.getOne(ctx, kind, "id", strings.TrimSpace(id))
}

func (r *ReferencesRepo) GetByName(ctx context.Context, kind references.Kind, name string) (references.Reference, error) {
	return r.getOne(ctx, kind, "name", name)
}

func (r *ReferencesRepo) getOne(ctx context.Context, kind references.Kind, column, value string) (references.Reference, error) {
	table, _, err := tableFor(kind)
	if err != nil {
		return references.Reference{}, err
	}

	ref := references.Reference{Kind: kind}
	err = r.db.QueryRowContext(ctx, `SELECT id, name FROM `+table+` WHERE `+column+` = $1`, value).
		Scan(&ref.ID, &ref.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return references.Reference{}, references.ErrNotFound
	}
	if err != nil {
		return references.Reference{}, err
	}
	return ref, nil
}

func (r *ReferencesRepo) List(ctx context.Context, kind references.Kind) ([]references.Reference, error) {
	table, _, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]references.Reference, 0)
	for rows.Next() {
		ref := references.Reference{Kind: kind}
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// ReassignAndDelete corre en una transacción: lock de la fila origen,
// UPDATE masivo de la FK y DELETE. La FK de pets impide borrar antes de reasignar.
func (r *ReferencesRepo) ReassignAndDelete(ctx context.Context, kind references.Kind, fromID, toID string) ([]string, error) {
	table, fk, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE id = $1 FOR UPDATE`, fromID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, references.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `UPDATE pets SET `+fk+` = $2 WHERE `+fk+` = $1 RETURNING id`, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("reassign pets: %w", err)
	}
	moved := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		moved = append(moved, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, fromID); err != nil {
		return nil, fmt.Errorf("delete %s: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return moved, nil
}
