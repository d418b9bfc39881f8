package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/TobiSchelling/fishgrade/internal/interpret"
)

// InsertAnalysis stores a raw response together with its parse and validation results.
func (db *DB) InsertAnalysis(source *string, raw string, a interpret.Analysis, v interpret.Assessment) (int64, error) {
	chars, err := marshalOptional(a.Characteristics)
	if err != nil {
		return 0, fmt.Errorf("encoding characteristics: %w", err)
	}
	sections, err := marshalOptional(a.Sections)
	if err != nil {
		return 0, fmt.Errorf("encoding sections: %w", err)
	}
	issues, err := marshalOptional(v.Issues)
	if err != nil {
		return 0, fmt.Errorf("encoding issues: %w", err)
	}

	result, err := db.conn.Exec(
		`INSERT INTO analyses
		(source, raw_text, kind, species, confidence, characteristics, sections,
		 clean_content, validation_score, is_valid, quality, issues)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		source, raw, a.Kind.String(), a.Species, a.Confidence, chars, sections,
		a.CleanContent, v.Score, boolToInt(v.IsValid), string(v.Quality), issues,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetAnalysis returns a stored analysis, or nil if it does not exist.
func (db *DB) GetAnalysis(id int64) (*AnalysisRecord, error) {
	row := db.conn.QueryRow(
		`SELECT id, source, raw_text, kind, species, confidence, characteristics, sections,
		clean_content, validation_score, is_valid, quality, issues, created_at
		FROM analyses WHERE id = ?`, id,
	)

	var r AnalysisRecord
	var kind, quality string
	var valid int
	var chars, sections, issues *string
	if err := row.Scan(&r.ID, &r.Source, &r.RawText, &kind, &r.Analysis.Species, &r.Analysis.Confidence,
		&chars, &sections, &r.Analysis.CleanContent, &r.Assessment.Score, &valid,
		&quality, &issues, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := r.Analysis.Kind.UnmarshalText([]byte(kind)); err != nil {
		return nil, err
	}
	r.Assessment.IsValid = valid != 0
	r.Assessment.Quality = interpret.Quality(quality)

	unmarshalOptional(chars, &r.Analysis.Characteristics)
	unmarshalOptional(sections, &r.Analysis.Sections)
	unmarshalOptional(issues, &r.Assessment.Issues)
	if r.Assessment.Issues == nil {
		r.Assessment.Issues = []string{}
	}

	return &r, nil
}

// ListAnalyses returns the most recent analyses first. limit <= 0 returns all.
func (db *DB) ListAnalyses(limit int) ([]AnalysisSummary, error) {
	query := `SELECT id, source, species, confidence, validation_score, quality, created_at
		FROM analyses ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// FindAnalysesBySpecies returns analyses whose species matches name, ignoring case.
func (db *DB) FindAnalysesBySpecies(name string) ([]AnalysisSummary, error) {
	rows, err := db.conn.Query(
		`SELECT id, source, species, confidence, validation_score, quality, created_at
		FROM analyses WHERE species = ? COLLATE NOCASE ORDER BY id DESC`, name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// DeleteAnalysis removes an analysis. It reports whether a row was deleted.
func (db *DB) DeleteAnalysis(id int64) (bool, error) {
	result, err := db.conn.Exec("DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func scanSummaries(rows *sql.Rows) ([]AnalysisSummary, error) {
	var out []AnalysisSummary
	for rows.Next() {
		var s AnalysisSummary
		var quality string
		if err := rows.Scan(&s.ID, &s.Source, &s.Species, &s.Confidence,
			&s.ValidationScore, &quality, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Quality = interpret.Quality(quality)
		out = append(out, s)
	}
	return out, rows.Err()
}

func marshalOptional(v any) (*string, error) {
	switch x := v.(type) {
	case []string:
		if x == nil {
			return nil, nil
		}
	case []interpret.Section:
		if x == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

// unmarshalOptional decodes a JSON column, leaving dst untouched on NULL or bad data.
func unmarshalOptional(src *string, dst any) {
	if src == nil {
		return
	}
	_ = json.Unmarshal([]byte(*src), dst)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
