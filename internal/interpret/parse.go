package interpret

import (
	"encoding/json"
	"fmt"
	"log"
)

// Kind tells whether an Analysis came out of the extractors or the fallback path.
type Kind int

const (
	// KindExtracted means every matcher ran; absent fields simply had no match.
	KindExtracted Kind = iota
	// KindFallback means extraction failed and only CleanContent is set.
	KindFallback
)

func (k Kind) String() string {
	switch k {
	case KindExtracted:
		return "extracted"
	case KindFallback:
		return "fallback"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "extracted":
		*k = KindExtracted
	case "fallback":
		*k = KindFallback
	default:
		return fmt.Errorf("unknown analysis kind %q", text)
	}
	return nil
}

// Section is a "Label: content" pair found in the analysis text.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Analysis is the structured form of an AI-generated fish description.
type Analysis struct {
	Kind            Kind      `json:"kind"`
	Species         *string   `json:"species,omitempty"`
	Confidence      *int      `json:"confidence,omitempty"`
	Characteristics []string  `json:"characteristics,omitempty"`
	Sections        []Section `json:"sections,omitempty"`
	CleanContent    string    `json:"clean_content"`
}

// HasErrors reports whether extraction itself failed.
func (a Analysis) HasErrors() bool {
	return a.Kind == KindFallback
}

// MarshalJSON adds the derived has_errors flag.
func (a Analysis) MarshalJSON() ([]byte, error) {
	type plain Analysis
	return json.Marshal(struct {
		plain
		HasErrors bool `json:"has_errors"`
	}{plain(a), a.HasErrors()})
}

// Matcher is one extraction heuristic. Apply reads the cleaned text and fills
// the fields it owns on the analysis; finding nothing is not an error.
type Matcher struct {
	Name  string
	Apply func(clean string, a *Analysis)
}

// Parser runs an ordered sequence of matchers over cleaned text.
type Parser struct {
	matchers []Matcher
}

// NewParser creates a parser with the given matchers, or DefaultMatchers if none are given.
func NewParser(matchers ...Matcher) *Parser {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Parser{matchers: matchers}
}

var defaultParser = NewParser()

// Parse cleans text and extracts species, confidence, characteristics and
// sections with the default matchers. It never panics.
func Parse(text string) Analysis {
	return defaultParser.Parse(text)
}

// Parse cleans text and applies the parser's matchers in order. If a matcher
// panics, the partial result is discarded and a fallback analysis holding a
// minimally cleaned copy of text is returned instead.
func (p *Parser) Parse(text string) (result Analysis) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Analysis extraction failed, using fallback: %v", r)
			result = fallback(text)
		}
	}()

	clean := Clean(text, DefaultCleaningOptions())
	a := Analysis{Kind: KindExtracted, CleanContent: clean}
	for _, m := range p.matchers {
		m.Apply(clean, &a)
	}
	return a
}

func fallback(text string) Analysis {
	return Analysis{
		Kind:         KindFallback,
		CleanContent: Clean(text, withMinimumLength(1)),
	}
}
