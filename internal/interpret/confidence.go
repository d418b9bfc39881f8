package interpret

import "strconv"

// Confidence level thresholds. They are independent of the quality thresholds.
const (
	ConfidenceHigh   = 80
	ConfidenceMedium = 60
)

// Presentation colors for each confidence level.
const (
	ColorPrimary     = "primary"
	ColorWarning     = "warning"
	ColorDestructive = "destructive"
)

// ConfidenceDisplay is how a confidence number is shown to the user.
type ConfidenceDisplay struct {
	Percentage string  `json:"percentage"`
	Level      Quality `json:"level"`
	Color      string  `json:"color"`
}

// FormatConfidence maps a confidence value to its display triple. A nil
// confidence is treated as 0.
func FormatConfidence(confidence *int) ConfidenceDisplay {
	value := 0
	if confidence != nil {
		value = *confidence
	}

	d := ConfidenceDisplay{Percentage: strconv.Itoa(value) + "%"}
	switch {
	case value >= ConfidenceHigh:
		d.Level, d.Color = QualityHigh, ColorPrimary
	case value >= ConfidenceMedium:
		d.Level, d.Color = QualityMedium, ColorWarning
	default:
		d.Level, d.Color = QualityLow, ColorDestructive
	}
	return d
}
