package interpret

import (
	"regexp"
	"strconv"
	"strings"
)

// Minimum line lengths used when re-cleaning extracted fragments.
const (
	characteristicMinLength = 3
	sectionMinLength        = 5
)

var (
	speciesRe = regexp.MustCompile(
		`(?im)^[ \t]*(?:species|spesies|nama[ \t]+ikan|jenis[ \t]+ikan|common[ \t]+name|fish[ \t]+name|nama|jenis)\b[ \t]*:?[ \t]*([^\n]*)$`)
	confidenceRe = regexp.MustCompile(
		`(?i)\b(?:confidence(?:[ \t]+level)?|tingkat[ \t]+keyakinan|keyakinan|kepercayaan|akurasi)\b[ \t]*:?[ \t]*(\d+)[ \t]*%?`)
	characteristicsRe = regexp.MustCompile(
		`(?i)\b(?:characteristics|karakteristik|ciri-ciri|ciri[ \t]+khas|ciri|features)\b[ \t]*:`)
	sectionRe = regexp.MustCompile(`(?m)^[ \t]*(\p{Lu}[^:\n]*):[ \t]*([^\n]*)$`)

	// Lines that end a characteristics block.
	labelLineRe    = regexp.MustCompile(`^\p{Lu}[^:\n]*:`)
	numberedItemRe = regexp.MustCompile(`^\d+\.`)
	bulletPrefixRe = regexp.MustCompile(`^(?:[-•*][ \t]*)+`)
)

// DefaultMatchers returns the extraction heuristics in the order Parse applies them.
func DefaultMatchers() []Matcher {
	return []Matcher{
		{Name: "species", Apply: matchSpecies},
		{Name: "confidence", Apply: matchConfidence},
		{Name: "characteristics", Apply: matchCharacteristics},
		{Name: "sections", Apply: matchSections},
	}
}

// ExtractSpecies returns the rest of the first line that starts with a species keyword.
func ExtractSpecies(clean string) (string, bool) {
	for _, m := range speciesRe.FindAllStringSubmatch(clean, -1) {
		name := strings.TrimSpace(m[1])
		if name != "" {
			return name, true
		}
	}
	return "", false
}

// ExtractConfidence returns the first integer that follows a confidence keyword.
// The value is not clamped.
func ExtractConfidence(clean string) (int, bool) {
	m := confidenceRe.FindStringSubmatch(clean)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractCharacteristics returns the trait lines of the first labeled
// characteristics block, in source order.
func ExtractCharacteristics(clean string) []string {
	loc := characteristicsRe.FindStringIndex(clean)
	if loc == nil {
		return nil
	}

	lines := strings.Split(clean[loc[1]:], "\n")
	var traits []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if i > 0 && endsCharacteristicsBlock(trimmed) {
			break
		}
		trimmed = bulletPrefixRe.ReplaceAllString(trimmed, "")
		if trait := Clean(trimmed, withMinimumLength(characteristicMinLength)); trait != "" {
			traits = append(traits, trait)
		}
	}
	return traits
}

func endsCharacteristicsBlock(line string) bool {
	return line == "" ||
		labelLineRe.MatchString(line) ||
		numberedItemRe.MatchString(line) ||
		strings.HasPrefix(line, "-")
}

// ExtractSections returns every "Label: content" line whose content survives
// cleaning. Duplicate labels are kept.
func ExtractSections(clean string) []Section {
	var sections []Section
	for _, m := range sectionRe.FindAllStringSubmatch(clean, -1) {
		content := Clean(m[2], withMinimumLength(sectionMinLength))
		if content == "" {
			continue
		}
		sections = append(sections, Section{
			Title:   strings.TrimSpace(m[1]),
			Content: content,
		})
	}
	return sections
}

func matchSpecies(clean string, a *Analysis) {
	if name, ok := ExtractSpecies(clean); ok {
		a.Species = &name
	}
}

func matchConfidence(clean string, a *Analysis) {
	if n, ok := ExtractConfidence(clean); ok {
		a.Confidence = &n
	}
}

func matchCharacteristics(clean string, a *Analysis) {
	a.Characteristics = ExtractCharacteristics(clean)
}

func matchSections(clean string, a *Analysis) {
	a.Sections = ExtractSections(clean)
}
