// Package postgres implements the domain repositories on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"macrolens/internal/domain"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var _ domain.ProfileRepository = (*DB)(nil)
var _ domain.FoodRepository = (*DB)(nil)
var _ domain.StreakRepository = (*DB)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		gender TEXT NOT NULL,
		activity_level TEXT NOT NULL,
		tracking_difficulty TEXT NOT NULL DEFAULT '',
		experience_level TEXT NOT NULL DEFAULT '',
		height_unit TEXT NOT NULL CHECK(height_unit IN ('metric','imperial')),
		height_value DOUBLE PRECISION NOT NULL,
		height_inches DOUBLE PRECISION,
		weight_unit TEXT NOT NULL CHECK(weight_unit IN ('metric','imperial')),
		weight_value DOUBLE PRECISION NOT NULL,
		date_of_birth TEXT NOT NULL,
		main_goal TEXT NOT NULL,
		dietary_preference TEXT NOT NULL,
		daily_calories INTEGER NOT NULL DEFAULT 0,
		daily_protein_g DOUBLE PRECISION NOT NULL DEFAULT 0,
		daily_carbs_g DOUBLE PRECISION NOT NULL DEFAULT 0,
		daily_fats_g DOUBLE PRECISION NOT NULL DEFAULT 0,
		streak INTEGER NOT NULL DEFAULT 0,
		streak_update_date TIMESTAMPTZ,
		onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS foods_consumed (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		emoji TEXT NOT NULL,
		protein DOUBLE PRECISION NOT NULL DEFAULT 0,
		carbs DOUBLE PRECISION NOT NULL DEFAULT 0,
		fats DOUBLE PRECISION NOT NULL DEFAULT 0,
		calories DOUBLE PRECISION NOT NULL DEFAULT 0,
		portion DOUBLE PRECISION NOT NULL DEFAULT 1,
		photo_path TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);`,
	"CREATE INDEX IF NOT EXISTS idx_foods_consumed_user_created ON foods_consumed(user_id, created_at DESC);",
	`CREATE TABLE IF NOT EXISTS user_streaks (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		streak_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE(user_id, streak_date)
	);`,
}

// Migrate creates tables and indexes if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
