// Package sqlite es el storage embebido: gorm sobre el driver pure-Go de modernc.
package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const defaultPath = "petcatalog.db"

type speciesModel struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (speciesModel) TableName() string { return "species" }

type personalityModel struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (personalityModel) TableName() string { return "personalities" }

// refRow se usa para leer/escribir ambas tablas de referencia vía Table().
type refRow struct {
	ID   string
	Name string
}

type petModel struct {
	ID            string `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	SpeciesID     string `gorm:"index;not null"`
	PersonalityID string `gorm:"index;not null"`
	Age           float64
	Description   string
	Image         string
	Mood          string
	Adopted       bool
	AdoptionDate  *time.Time

	// timestamps los pone el dominio, no gorm
	CreatedAt time.Time `gorm:"index;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`

	// Sólo existen para que AutoMigrate cree las FKs; nunca se cargan.
	Species     *speciesModel     `gorm:"foreignKey:SpeciesID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Personality *personalityModel `gorm:"foreignKey:PersonalityID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

func (petModel) TableName() string { return "pets" }

type eventModel struct {
	ID         string    `gorm:"primaryKey"`
	PetID      string    `gorm:"index:idx_pet_events_pet_occurred,priority:1;not null"`
	Type       string    `gorm:"not null"`
	Source     string    `gorm:"not null"`
	OccurredAt time.Time `gorm:"index:idx_pet_events_pet_occurred,priority:2"`
	RecordedAt time.Time
	Title      string
	Notes      string
}

func (eventModel) TableName() string { return "pet_events" }

// Open abre (o crea) la base y corre AutoMigrate.
// path vacío => petcatalog.db; ":memory:" => base en memoria.
func Open(path string) (*gorm.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPath
	}

	dsn := "file::memory:"
	if path != ":memory:" {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dsn = "file:" + path
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

	db, err := gorm.Open(sqlitedriver.New(sqlitedriver.Config{
		DriverName: "sqlite",
		DSN:        dsn,
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Una sola conexión: serializa escrituras (sqlite) y mantiene viva la base en memoria.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&speciesModel{},
		&personalityModel{},
		&petModel{},
		&eventModel{},
	); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// Close cierra la conexión subyacente.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// isUniqueViolation: el translator de gorm sólo reconoce errores de mattn,
// así que también se mira el mensaje de modernc.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
