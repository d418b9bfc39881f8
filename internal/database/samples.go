package database

import (
	"database/sql"
	"fmt"

	"github.com/TobiSchelling/fishgrade/internal/organoleptic"
)

const sampleColumns = `id, label, eye, gill, slime, flesh, odor, texture, score, category, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// InsertSample stores a graded sample. Grades must be within 1..9.
func (db *DB) InsertSample(label *string, p organoleptic.Parameters) (*SampleRecord, error) {
	sample, err := organoleptic.NewSample(p)
	if err != nil {
		return nil, err
	}
	fresh := sample.Freshness()

	result, err := db.conn.Exec(
		`INSERT INTO samples (label, eye, gill, slime, flesh, odor, texture, score, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		label, p.Eye, p.Gill, p.Slime, p.Flesh, p.Odor, p.Texture, fresh.Score, string(fresh.Category),
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetSample(id)
}

// GetSample returns a stored sample, or nil if it does not exist.
func (db *DB) GetSample(id int64) (*SampleRecord, error) {
	row := db.conn.QueryRow("SELECT "+sampleColumns+" FROM samples WHERE id = ?", id)
	s, err := scanSample(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSamples returns samples, newest first. An empty category returns all.
func (db *DB) ListSamples(category organoleptic.Category) ([]SampleRecord, error) {
	query := "SELECT " + sampleColumns + " FROM samples"
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, string(category))
	}
	query += " ORDER BY id DESC"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SampleRecord
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateSampleParameter changes one grade of a stored sample. The grade, score
// and category are written in a single transaction so readers never see a
// score that does not match the stored grades.
func (db *DB) UpdateSampleParameter(id int64, param organoleptic.Parameter, value int) (*SampleRecord, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin sample update: %w", err)
	}
	defer tx.Rollback()

	current, err := scanSample(tx.QueryRow("SELECT "+sampleColumns+" FROM samples WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sample %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	sample, err := organoleptic.NewSample(current.Parameters)
	if err != nil {
		return nil, fmt.Errorf("sample %d has invalid stored grades: %w", id, err)
	}
	if err := sample.Set(param, value); err != nil {
		return nil, err
	}
	p, fresh := sample.Snapshot()

	if _, err := tx.Exec(
		`UPDATE samples SET eye = ?, gill = ?, slime = ?, flesh = ?, odor = ?, texture = ?,
		score = ?, category = ?, updated_at = datetime('now') WHERE id = ?`,
		p.Eye, p.Gill, p.Slime, p.Flesh, p.Odor, p.Texture, fresh.Score, string(fresh.Category), id,
	); err != nil {
		return nil, err
	}

	updated, err := scanSample(tx.QueryRow("SELECT "+sampleColumns+" FROM samples WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sample update: %w", err)
	}
	return updated, nil
}

// DeleteSample removes a sample. It reports whether a row was deleted.
func (db *DB) DeleteSample(id int64) (bool, error) {
	result, err := db.conn.Exec("DELETE FROM samples WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func scanSample(row rowScanner) (*SampleRecord, error) {
	var s SampleRecord
	var category string
	p := &s.Parameters
	if err := row.Scan(&s.ID, &s.Label, &p.Eye, &p.Gill, &p.Slime, &p.Flesh, &p.Odor, &p.Texture,
		&s.Freshness.Score, &category, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Freshness.Category = organoleptic.Category(category)
	return &s, nil
}
