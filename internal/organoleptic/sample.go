package organoleptic

import "sync"

// Sample is an editable set of grades whose freshness is kept in step with
// them. Score and category are only ever written together, from the current
// parameters.
type Sample struct {
	mu        sync.RWMutex
	params    Parameters
	freshness Freshness
}

// NewSample creates a sample after checking every grade is within range.
func NewSample(p Parameters) (*Sample, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Sample{params: p, freshness: CalculateFreshness(p)}, nil
}

// Set changes one parameter and recomputes score and category.
func (s *Sample) Set(param Parameter, value int) error {
	if _, ok := labels[param]; !ok {
		return ErrUnknownParameter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.params.With(param, value)
	if err := next.Validate(); err != nil {
		return err
	}
	s.params = next
	s.freshness = CalculateFreshness(next)
	return nil
}

// Parameters returns a copy of the current grades.
func (s *Sample) Parameters() Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Freshness returns the current score and category.
func (s *Sample) Freshness() Freshness {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.freshness
}

// Snapshot returns grades and freshness read under one lock.
func (s *Sample) Snapshot() (Parameters, Freshness) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params, s.freshness
}

// Score returns the current aggregate score.
func (s *Sample) Score() float64 {
	return s.Freshness().Score
}

// Category returns the current freshness category.
func (s *Sample) Category() Category {
	return s.Freshness().Category
}

// InvalidParameters lists the parameters currently carrying the unrecognized grade.
func (s *Sample) InvalidParameters() []string {
	return ListInvalidParameters(s.Parameters())
}
