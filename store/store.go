package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"grid-fog-engine/fog"
)

var ErrPresetNotFound = errors.New("calibration preset not found")

// Store keeps named grid calibrations in PostgreSQL so an image does not
// have to be calibrated again. Cell visibility is never stored.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and creates the calibration_presets table if it does not exist.
func New(connStr string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS calibration_presets (
			name TEXT PRIMARY KEY,
			calibration JSONB NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
	`
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Store{pool: pool}, nil
}

// SavePreset upserts a calibration under name.
func (s *Store) SavePreset(ctx context.Context, name string, cal fog.Calibration) error {
	data, err := json.Marshal(cal)
	if err != nil {
		return fmt.Errorf("marshal calibration: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO calibration_presets (name, calibration, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET calibration = EXCLUDED.calibration, updated_at = NOW();
	`
	_, err = s.pool.Exec(ctx, query, name, data)
	return err
}

// LoadPreset returns a single preset or ErrPresetNotFound.
func (s *Store) LoadPreset(ctx context.Context, name string) (fog.Calibration, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var data []byte
	err := s.pool.QueryRow(ctx, "SELECT calibration FROM calibration_presets WHERE name = $1", name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return fog.Calibration{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	if err != nil {
		return fog.Calibration{}, err
	}

	var cal fog.Calibration
	if err := json.Unmarshal(data, &cal); err != nil {
		return fog.Calibration{}, fmt.Errorf("decode preset %q: %w", name, err)
	}
	return cal, nil
}

// LoadPresets returns all stored presets keyed by name.
func (s *Store) LoadPresets(ctx context.Context) (map[string]fog.Calibration, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, "SELECT name, calibration FROM calibration_presets")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presets := make(map[string]fog.Calibration)
	for rows.Next() {
		var name string
		var data []byte
		if err := rows.Scan(&name, &data); err != nil {
			return nil, err
		}
		var cal fog.Calibration
		if err := json.Unmarshal(data, &cal); err != nil {
			return nil, fmt.Errorf("decode preset %q: %w", name, err)
		}
		presets[name] = cal
	}

	return presets, rows.Err()
}

// DeletePreset removes the preset with the given name.
func (s *Store) DeletePreset(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, "DELETE FROM calibration_presets WHERE name = $1", name)
	return err
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
