package interpret

import (
	"strings"
	"unicode/utf8"
)

// Quality is the coarse grade of how well an analysis was parsed.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// Score thresholds for Validate.
const (
	QualityHighScore   = 80
	QualityMediumScore = 60
	ValidScore         = 50
)

// Points awarded by each quality check.
const (
	speciesPoints         = 30
	confidencePoints      = 20
	characteristicsPoints = 25
	contentPoints         = 15
	noErrorPoints         = 10
)

// Check limits. Species, confidence and content must exceed theirs; the
// characteristics count must reach its own.
const (
	minSpeciesLength   = 3
	minConfidence      = 50
	minCharacteristics = 3
	minContentLength   = 100
)

// Issue texts reported when a check fails.
const (
	IssueSpeciesUnclear      = "species identification unclear"
	IssueLowConfidence       = "low confidence level"
	IssueIncomplete          = "incomplete characteristics"
	IssueContentTooShort     = "analysis content too short"
	IssueParsingErrorPresent = "parsing error present"
)

// Assessment is the quality verdict for a parsed analysis.
type Assessment struct {
	Score   int      `json:"score"`
	IsValid bool     `json:"is_valid"`
	Quality Quality  `json:"quality"`
	Issues  []string `json:"issues"`
}

// Validate scores a parsed analysis from 0 to 100.
//
// Checks, each evaluated independently:
//   - species present and longer than 3 characters: 30
//   - confidence present and above 50: 20
//   - at least 3 characteristics: 25
//   - clean content longer than 100 characters: 15
//   - extraction did not fall back: 10
func Validate(a Analysis) Assessment {
	score := 0
	issues := []string{}

	check := func(ok bool, points int, issue string) {
		if ok {
			score += points
		} else {
			issues = append(issues, issue)
		}
	}

	check(a.Species != nil && utf8.RuneCountInString(strings.TrimSpace(*a.Species)) > minSpeciesLength,
		speciesPoints, IssueSpeciesUnclear)
	check(a.Confidence != nil && *a.Confidence > minConfidence,
		confidencePoints, IssueLowConfidence)
	check(len(a.Characteristics) >= minCharacteristics,
		characteristicsPoints, IssueIncomplete)
	check(utf8.RuneCountInString(a.CleanContent) > minContentLength,
		contentPoints, IssueContentTooShort)
	check(!a.HasErrors(), noErrorPoints, IssueParsingErrorPresent)

	return Assessment{
		Score:   score,
		IsValid: score >= ValidScore,
		Quality: qualityFor(score),
		Issues:  issues,
	}
}

func qualityFor(score int) Quality {
	switch {
	case score >= QualityHighScore:
		return QualityHigh
	case score >= QualityMediumScore:
		return QualityMedium
	default:
		return QualityLow
	}
}
