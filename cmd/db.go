package cmd

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"toolnav/internal/config"
)

// OpenDatabase opens the SQLite database used by every subcommand.
// TranslateError is required so unique-constraint violations surface
// as gorm.ErrDuplicatedKey rather than raw driver errors.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Name, err)
	}
	return db, nil
}

// CloseDatabase releases the underlying connection pool.
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
