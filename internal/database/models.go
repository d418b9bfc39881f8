package database

import (
	"github.com/TobiSchelling/fishgrade/internal/interpret"
	"github.com/TobiSchelling/fishgrade/internal/organoleptic"
)

// AnalysisRecord is a stored AI analysis with its parse and validation results.
type AnalysisRecord struct {
	ID         int64
	Source     *string
	RawText    string
	Analysis   interpret.Analysis
	Assessment interpret.Assessment
	CreatedAt  *string
}

// AnalysisSummary is the list view of a stored analysis.
type AnalysisSummary struct {
	ID              int64
	Source          *string
	Species         *string
	Confidence      *int
	ValidationScore int
	Quality         interpret.Quality
	CreatedAt       *string
}

// SampleRecord is a stored organoleptic sample.
type SampleRecord struct {
	ID         int64                   `json:"id,omitempty"`
	Label      *string                 `json:"label,omitempty"`
	Parameters organoleptic.Parameters `json:"parameters"`
	Freshness  organoleptic.Freshness  `json:"freshness"`
	CreatedAt  *string                 `json:"created_at,omitempty"`
	UpdatedAt  *string                 `json:"updated_at,omitempty"`
}

// Stats summarizes database contents.
type Stats struct {
	Analyses      int
	ValidAnalyses int
	Samples       int
	AvgScore      float64
	ByCategory    map[organoleptic.Category]int
}
