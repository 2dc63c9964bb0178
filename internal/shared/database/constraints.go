package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds database constraints the counter invariants rely on.
// reserved_count and inventory_count must never go negative, and reserved
// stock can never exceed what is physically on hand.
func MigrateConstraints(db *gorm.DB) error {
	// Postgres has no ADD CONSTRAINT IF NOT EXISTS, so each one is guarded.
	err := db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_books_counts_non_negative') THEN
				ALTER TABLE books
				ADD CONSTRAINT chk_books_counts_non_negative
				CHECK (inventory_count >= 0 AND reserved_count >= 0);
			END IF;
		END $$;
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_books_reserved_within_on_hand') THEN
				ALTER TABLE books
				ADD CONSTRAINT chk_books_reserved_within_on_hand
				CHECK (reserved_count <= inventory_count);
			END IF;
		END $$;
	`).Error
	if err != nil {
		return err
	}

	// Sweep scans by expiry; holder lookups back the legacy release path
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_expires_at
		ON inventory_reservations (expires_at);
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_book_holder
		ON inventory_reservations (book_id, holder_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
