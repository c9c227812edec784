// Package local is the single-file store used for development, the CLI and
// tests. It mirrors the Postgres repositories on top of gorm and SQLite.
package local

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "umzugsbuero/backend/internal/errors"
)

type DB struct {
	Gorm *gorm.DB
}

// Open opens (or creates) the SQLite file at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive across calls.
	sqlDB.SetMaxOpenConns(1)
	return &DB{Gorm: gdb}, nil
}

func (db *DB) Migrate() error {
	return db.Gorm.AutoMigrate(&customerModel{}, &quoteModel{}, &invoiceModel{}, &tokenModel{}, &counterModel{})
}

func (db *DB) Close() error {
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func mapError(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFoundError(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewConflictError(what + " already exists")
	}
	return err
}
