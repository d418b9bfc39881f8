package interpret

import "testing"

func TestFormatConfidence(t *testing.T) {
	tests := []struct {
		in         *int
		percentage string
		level      Quality
		color      string
	}{
		{intPtr(85), "85%", QualityHigh, ColorPrimary},
		{intPtr(80), "80%", QualityHigh, ColorPrimary},
		{intPtr(79), "79%", QualityMedium, ColorWarning},
		{intPtr(65), "65%", QualityMedium, ColorWarning},
		{intPtr(60), "60%", QualityMedium, ColorWarning},
		{intPtr(10), "10%", QualityLow, ColorDestructive},
		{intPtr(150), "150%", QualityHigh, ColorPrimary},
		{nil, "0%", QualityLow, ColorDestructive},
	}

	for _, tt := range tests {
		got := FormatConfidence(tt.in)
		if got.Percentage != tt.percentage || got.Level != tt.level || got.Color != tt.color {
			t.Errorf("FormatConfidence(%v) = %+v, want {%s %s %s}", tt.in, got, tt.percentage, tt.level, tt.color)
		}
	}
}
