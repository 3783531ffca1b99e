package database

import (
	"context"
	"fmt"
)

// Document tables hold one JSONB doc per crawled item, stamped with a
// monotonically increasing seq from the counters table. Consumers page
// by seq, so seq order is delivery order.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		seq  BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS product_master (
		asin       TEXT PRIMARY KEY,
		seq        BIGINT NOT NULL,
		crawl_date DATE NOT NULL DEFAULT CURRENT_DATE,
		doc        JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_product_master_seq ON product_master (seq)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		seq  BIGINT PRIMARY KEY,
		asin TEXT NOT NULL,
		doc  JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_asin ON reviews (asin)`,
	`CREATE TABLE IF NOT EXISTS rankings (
		seq        BIGINT PRIMARY KEY,
		board_name TEXT NOT NULL,
		doc        JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS failures (
		id  BIGSERIAL PRIMARY KEY,
		doc JSONB NOT NULL
	)`,
}

// InitSchema creates the document tables when they do not exist yet.
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
