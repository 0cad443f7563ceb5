package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255),
		name VARCHAR(255),
		photo_url VARCHAR(500),
		role VARCHAR(20) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'maintainer', 'admin')),
		refresh_token_hash VARCHAR(64),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// Email uniqueness is case-insensitive: lookups go through LOWER(email).
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
