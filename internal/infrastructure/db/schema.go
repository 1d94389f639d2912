package db

import (
	"context"
	_ "embed"
	"fmt"

	"gorm.io/gorm"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables the importer needs. Every statement is
// idempotent so it is safe to run on each start.
func EnsureSchema(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(schemaSQL).Error; err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
