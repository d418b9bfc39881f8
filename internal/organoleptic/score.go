package organoleptic

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Parameter names one of the six sensory attributes of a sample.
type Parameter string

const (
	Eye     Parameter = "Eye"
	Gill    Parameter = "Gill"
	Slime   Parameter = "Slime"
	Flesh   Parameter = "Flesh"
	Odor    Parameter = "Odor"
	Texture Parameter = "Texture"
)

// AllParameters lists the parameters in canonical order.
var AllParameters = []Parameter{Eye, Gill, Slime, Flesh, Odor, Texture}

var labels = map[Parameter]string{
	Eye:     "Mata",
	Gill:    "Insang",
	Slime:   "Lendir",
	Flesh:   "Daging",
	Odor:    "Bau",
	Texture: "Tekstur",
}

// Label returns the name used on the national score sheet.
func (p Parameter) Label() string {
	return labels[p]
}

// ParseParameter accepts an English name or a score sheet label, case-insensitive.
func ParseParameter(name string) (Parameter, error) {
	name = strings.TrimSpace(name)
	for _, p := range AllParameters {
		if strings.EqualFold(name, string(p)) || strings.EqualFold(name, p.Label()) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

var (
	// ErrUnknownParameter is returned for a name that is not one of the six parameters.
	ErrUnknownParameter = errors.New("unknown organoleptic parameter")
	// ErrOutOfRange is returned when a grade is outside MinGrade..MaxGrade.
	ErrOutOfRange = errors.New("grade out of range")
)

// Grade scale. UnrecognizedGrade is not a grade on the standard's score sheet
// and never takes part in the aggregate.
const (
	MinGrade          = 1
	MaxGrade          = 9
	UnrecognizedGrade = 4
)

// Category is the freshness tier derived from a score.
type Category string

const (
	Prima   Category = "Prima"
	Baik    Category = "Baik"
	Sedang  Category = "Sedang"
	Busuk   Category = "Busuk"
	Invalid Category = "Invalid"
)

// Lower score bounds of each category.
const (
	PrimaScore  = 9.0
	BaikScore   = 7.0
	SedangScore = 5.0
	BusukScore  = 1.0
)

// Parameters holds the six raw grades of one sample.
type Parameters struct {
	Eye     int `json:"eye"`
	Gill    int `json:"gill"`
	Slime   int `json:"slime"`
	Flesh   int `json:"flesh"`
	Odor    int `json:"odor"`
	Texture int `json:"texture"`
}

// Get returns the grade of one parameter.
func (p Parameters) Get(param Parameter) int {
	switch param {
	case Eye:
		return p.Eye
	case Gill:
		return p.Gill
	case Slime:
		return p.Slime
	case Flesh:
		return p.Flesh
	case Odor:
		return p.Odor
	case Texture:
		return p.Texture
	}
	return 0
}

// With returns a copy of p with one parameter replaced.
func (p Parameters) With(param Parameter, value int) Parameters {
	switch param {
	case Eye:
		p.Eye = value
	case Gill:
		p.Gill = value
	case Slime:
		p.Slime = value
	case Flesh:
		p.Flesh = value
	case Odor:
		p.Odor = value
	case Texture:
		p.Texture = value
	}
	return p
}

// Validate checks that every grade lies within MinGrade..MaxGrade.
// UnrecognizedGrade is in range; it is excluded later, not rejected.
func (p Parameters) Validate() error {
	for _, param := range AllParameters {
		if v := p.Get(param); v < MinGrade || v > MaxGrade {
			return fmt.Errorf("%w: %s = %d", ErrOutOfRange, param, v)
		}
	}
	return nil
}

// Freshness is the aggregate score and category of a sample.
type Freshness struct {
	Score    float64  `json:"score"`
	Category Category `json:"category"`
}

// CalculateFreshness averages the recognized grades and classifies the result.
//
// Grades equal to UnrecognizedGrade, or outside MinGrade..MaxGrade, are left
// out of the mean. The mean is rounded to one decimal place (half away from
// zero) before classification. When no recognized grade remains the result is
// Score 0 with Category Invalid.
func CalculateFreshness(p Parameters) Freshness {
	sum, n := 0, 0
	for _, param := range AllParameters {
		v := p.Get(param)
		if !recognized(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return Freshness{Score: 0, Category: Invalid}
	}

	score := roundScore(float64(sum) / float64(n))
	return Freshness{Score: score, Category: Classify(score)}
}

// Classify maps a score to its freshness category.
func Classify(score float64) Category {
	switch {
	case score >= PrimaScore:
		return Prima
	case score >= BaikScore:
		return Baik
	case score >= SedangScore:
		return Sedang
	case score >= BusukScore:
		return Busuk
	default:
		return Invalid
	}
}

// IsInvalid reports whether any parameter carries the unrecognized grade.
func IsInvalid(p Parameters) bool {
	return len(ListInvalidParameters(p)) > 0
}

// ListInvalidParameters returns the names of the parameters that carry the
// unrecognized grade, in canonical order.
func ListInvalidParameters(p Parameters) []string {
	var names []string
	for _, param := range AllParameters {
		if p.Get(param) == UnrecognizedGrade {
			names = append(names, string(param))
		}
	}
	return names
}

func recognized(v int) bool {
	return v >= MinGrade && v <= MaxGrade && v != UnrecognizedGrade
}

func roundScore(mean float64) float64 {
	return math.Round(mean*10) / 10
}
