package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database within %v: %w (close also failed: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Migrate creates the schema if it does not exist yet. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            SERIAL PRIMARY KEY,
		nickname      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'player',
		avatar_key    TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_nickname_key UNIQUE (nickname)
	)`,
	`CREATE TABLE IF NOT EXISTS fixtures (
		id           SERIAL PRIMARY KEY,
		gameweek     INT NOT NULL,
		home_team    TEXT NOT NULL,
		away_team    TEXT NOT NULL,
		kickoff_at   TIMESTAMPTZ NOT NULL,
		status       TEXT NOT NULL DEFAULT 'scheduled',
		home_score   INT,
		away_score   INT,
		home_scorers TEXT[] NOT NULL DEFAULT '{}',
		away_scorers TEXT[] NOT NULL DEFAULT '{}',
		external_ref TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT fixtures_external_ref_key UNIQUE (external_ref)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fixtures_gameweek ON fixtures (gameweek, kickoff_at)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id           SERIAL PRIMARY KEY,
		user_id      INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		fixture_id   INT NOT NULL REFERENCES fixtures (id) ON DELETE CASCADE,
		home_score   INT NOT NULL CHECK (home_score >= 0),
		away_score   INT NOT NULL CHECK (away_score >= 0),
		home_scorers TEXT[] NOT NULL DEFAULT '{}',
		away_scorers TEXT[] NOT NULL DEFAULT '{}',
		chips        TEXT[] NOT NULL DEFAULT '{}',
		points       INT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT predictions_user_fixture_key UNIQUE (user_id, fixture_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_fixture ON predictions (fixture_id)`,
	`CREATE TABLE IF NOT EXISTS active_gameweek_chips (
		id           SERIAL PRIMARY KEY,
		user_id      INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		gameweek     INT NOT NULL,
		chip_id      TEXT NOT NULL,
		activated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT active_gameweek_chips_user_gameweek_chip_key UNIQUE (user_id, gameweek, chip_id)
	)`,
	`CREATE TABLE IF NOT EXISTS leagues (
		id         SERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		owner_id   INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		join_code  TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT leagues_join_code_key UNIQUE (join_code)
	)`,
	`CREATE TABLE IF NOT EXISTS league_members (
		league_id INT NOT NULL REFERENCES leagues (id) ON DELETE CASCADE,
		user_id   INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT league_members_pkey PRIMARY KEY (league_id, user_id)
	)`,
}
