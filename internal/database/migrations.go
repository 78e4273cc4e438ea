package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs data migrations after schema changes. Each step is
// safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := migrateItemStatus(db); err != nil {
		return err
	}
	if err := migrateAcquiredVia(db); err != nil {
		return err
	}
	return nil
}

// migrateItemStatus backfills the status column for rows created before
// statuses existed: anything with a sold timestamp is sold, the rest are
// in stock.
func migrateItemStatus(db *gorm.DB) error {
	if !db.Migrator().HasColumn("inventory_items", "status") {
		return nil
	}

	result := db.Exec(`UPDATE inventory_items SET status = 'sold' WHERE (status IS NULL OR status = '') AND sold_at IS NOT NULL`)
	if result.Error != nil {
		log.Printf("Warning: failed to backfill sold status: %v", result.Error)
	}

	result = db.Exec(`UPDATE inventory_items SET status = 'in_stock' WHERE status IS NULL OR status = ''`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Backfilled status on %d inventory rows", result.RowsAffected)
	}
	return nil
}

// migrateAcquiredVia defaults the acquisition kind to purchase for rows
// predating trade support.
func migrateAcquiredVia(db *gorm.DB) error {
	if !db.Migrator().HasColumn("inventory_items", "acquired_via") {
		return nil
	}
	return db.Exec(`UPDATE inventory_items SET acquired_via = 'purchase' WHERE acquired_via IS NULL OR acquired_via = ''`).Error
}
