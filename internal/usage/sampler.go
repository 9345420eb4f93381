package usage

import (
	"context"

	"github.com/verte-zerg/ikiflow/internal/window"
)

// Sampler accumulates one second of foreground time per Sample call.
type Sampler struct {
	source window.Source
	rules  Rules
	counts map[string]int
	total  int
}

// NewSampler returns a sampler reading titles from source.
func NewSampler(source window.Source, rules Rules) *Sampler {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Sampler{source: source, rules: rules, counts: map[string]int{}}
}

// Sample records one second against the current foreground application.
// It returns the name that was credited.
func (s *Sampler) Sample(ctx context.Context) string {
	name := UnknownApp
	if s.source != nil {
		if title, err := s.source.ActiveTitle(ctx); err == nil {
			name = s.rules.Normalize(title)
		}
	}
	s.counts[name]++
	s.total++
	return name
}

// Reset clears the accumulator for a new focus period.
func (s *Sampler) Reset() {
	s.counts = map[string]int{}
	s.total = 0
}

// Snapshot returns a copy of the per-app seconds.
func (s *Sampler) Snapshot() map[string]int {
	out := make(map[string]int, len(s.counts))
	for name, sec := range s.counts {
		out[name] = sec
	}
	return out
}

// Total returns the number of seconds sampled since the last reset.
func (s *Sampler) Total() int {
	return s.total
}
