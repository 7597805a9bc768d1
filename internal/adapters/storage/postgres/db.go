package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables para MVP (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// schema es idempotente; unique(name) por tabla de referencia es lo que
// vuelve segura la creación concurrente del centinela "Unknown".
var schema = []string{
	`CREATE TABLE IF NOT EXISTS species (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS personalities (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS pets (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		species_id     TEXT NOT NULL REFERENCES species(id),
		personality_id TEXT NOT NULL REFERENCES personalities(id),
		age            DOUBLE PRECISION NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		image          TEXT NOT NULL DEFAULT '',
		mood           TEXT NOT NULL,
		adopted        BOOLEAN NOT NULL DEFAULT FALSE,
		adoption_date  TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL,
		CONSTRAINT pets_adoption_date_chk CHECK (adopted = (adoption_date IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS pets_species_id_idx ON pets (species_id)`,
	`CREATE INDEX IF NOT EXISTS pets_personality_id_idx ON pets (personality_id)`,
	`CREATE INDEX IF NOT EXISTS pets_created_at_idx ON pets (created_at)`,
	// sin FK a pets: el historial sobrevive al borrado de la mascota
	`CREATE TABLE IF NOT EXISTS pet_events (
		id          TEXT PRIMARY KEY,
		pet_id      TEXT NOT NULL,
		type        TEXT NOT NULL,
		source      TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		notes       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS pet_events_pet_occurred_idx ON pet_events (pet_id, occurred_at DESC)`,
}

// Migrate crea las tablas si no existen.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// isUniqueViolation detecta SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation detecta SQLSTATE 23503.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
