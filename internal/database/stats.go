package database

import "github.com/TobiSchelling/fishgrade/internal/organoleptic"

// GetStats returns counts of stored analyses and samples.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{ByCategory: make(map[organoleptic.Category]int)}

	var valid *int
	if err := db.conn.QueryRow(
		"SELECT COUNT(*), SUM(is_valid) FROM analyses",
	).Scan(&s.Analyses, &valid); err != nil {
		return nil, err
	}
	if valid != nil {
		s.ValidAnalyses = *valid
	}

	// Invalid samples carry score 0 and are left out of the average.
	var avg *float64
	if err := db.conn.QueryRow(
		"SELECT AVG(score) FROM samples WHERE category != ?", string(organoleptic.Invalid),
	).Scan(&avg); err != nil {
		return nil, err
	}
	if avg != nil {
		s.AvgScore = *avg
	}

	rows, err := db.conn.Query("SELECT category, COUNT(*) FROM samples GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		s.ByCategory[organoleptic.Category(category)] = n
		s.Samples += n
	}
	return s, rows.Err()
}
