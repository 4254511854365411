package store

import (
	"context"
	"database/sql"
	"fmt"

	"gsweb/internal/models"

	_ "modernc.org/sqlite"
)

const createProfilesTable = `
CREATE TABLE IF NOT EXISTS tx_profiles (
	position    INTEGER PRIMARY KEY,
	range_start INTEGER NOT NULL,
	range_end   INTEGER NOT NULL,
	gi          TEXT    NOT NULL,
	mcs         INTEGER NOT NULL,
	fec_k       INTEGER NOT NULL,
	fec_n       INTEGER NOT NULL,
	bitrate     INTEGER NOT NULL,
	gop         INTEGER NOT NULL,
	pwr         INTEGER NOT NULL,
	roi_qp      TEXT    NOT NULL,
	bandwidth   INTEGER NOT NULL,
	qp_delta    INTEGER NOT NULL
);`

// SQLStore keeps profiles in a SQL table, replaced in one transaction per save.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore opens the database and creates the table if needed.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// A single connection keeps in-memory sqlite databases alive and writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createProfilesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Load returns the profiles ordered by their stored position.
func (s *SQLStore) Load(ctx context.Context) ([]models.TxProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT range_start, range_end, gi, mcs, fec_k, fec_n, bitrate, gop, pwr, roi_qp, bandwidth, qp_delta
		FROM tx_profiles ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.TxProfile{}
	for rows.Next() {
		var p models.TxProfile
		if err := rows.Scan(&p.RangeStart, &p.RangeEnd, &p.GI, &p.MCS, &p.FecK, &p.FecN,
			&p.Bitrate, &p.Gop, &p.Pwr, &p.RoiQP, &p.Bandwidth, &p.QpDelta); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

// Save replaces the table contents.
func (s *SQLStore) Save(ctx context.Context, profiles []models.TxProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tx_profiles`); err != nil {
		return fmt.Errorf("failed to clear profiles: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tx_profiles (position, range_start, range_end, gi, mcs, fec_k, fec_n, bitrate, gop, pwr, roi_qp, bandwidth, qp_delta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range profiles {
		if _, err := stmt.ExecContext(ctx, i, p.RangeStart, p.RangeEnd, p.GI, p.MCS, p.FecK, p.FecN,
			p.Bitrate, p.Gop, p.Pwr, p.RoiQP, p.Bandwidth, p.QpDelta); err != nil {
			return fmt.Errorf("failed to insert profile %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profiles: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
