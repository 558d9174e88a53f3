package store

import (
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) (*Repo, error) {
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &Repo{db: db}, nil
}

func ensureSchema(db *gorm.DB) error {
	// Families first: items and notes carry a foreign key to families.name.
	if err := db.AutoMigrate(&Family{}); err != nil {
		return fmt.Errorf("migrate families: %w", err)
	}
	if err := db.AutoMigrate(&Item{}, &Note{}); err != nil {
		return fmt.Errorf("migrate items/notes: %w", err)
	}
	return nil
}
