package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS stations (
    station_id TEXT PRIMARY KEY,
    icao TEXT,
    name TEXT,
    state TEXT,
    country TEXT,
    latitude REAL,
    longitude REAL,
    elevation REAL,
    active BOOLEAN DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS observations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    station_id TEXT NOT NULL,
    observed_at DATETIME NOT NULL,
    temp REAL,
    dewpoint REAL,
    humidity INTEGER,
    sky_code TEXT,
    weather_code TEXT,
    precip REAL,
    wind_avg REAL,
    wind_gust REAL,
    pressure REAL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(station_id, observed_at)
);

CREATE TABLE IF NOT EXISTS daily_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    station_id TEXT NOT NULL,
    date DATE NOT NULL,
    temp_max REAL,
    temp_min REAL,
    temp_avg REAL,
    precip REAL,
    snowfall REAL,
    snow_depth REAL,
    wind_avg REAL,
    sunrise TEXT,
    sunset TEXT,
    UNIQUE(station_id, date)
);

CREATE TABLE IF NOT EXISTS normals (
    station_id TEXT NOT NULL,
    month INTEGER NOT NULL,
    temp_max REAL,
    temp_min REAL,
    precip REAL,
    snowfall REAL,
    PRIMARY KEY (station_id, month)
);

CREATE TABLE IF NOT EXISTS fetch_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    station_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    date DATE NOT NULL,
    fetched_at DATETIME NOT NULL,
    success BOOLEAN NOT NULL,
    error TEXT,
    UNIQUE(station_id, kind, date)
);
`,
	},
	{
		Version:     2,
		Description: "Index observations by station and time",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_observations_station_time
    ON observations(station_id, observed_at);
CREATE INDEX IF NOT EXISTS idx_daily_records_station_date
    ON daily_records(station_id, date);
`,
	},
}

func (s *Store) Migrate() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		log.Printf("migrations: applying %d - %s", m.Version, m.Description)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Description, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

func (s *Store) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`)
	return err
}

func (s *Store) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (s *Store) MigrationVersion() (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
