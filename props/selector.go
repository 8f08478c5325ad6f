package props

import (
	"github.com/harborlight/beans"
)

// Selector is a beans.CandidateSelector that resolves injection points
// carrying a value expression against a property resolver. Injection
// points without an expression fall through to the default candidate
// rules.
type Selector struct {
	beans.SimpleCandidateSelector

	resolver *Resolver
}

// NewSelector creates a selector over the given resolver.
func NewSelector(resolver *Resolver) *Selector {
	return &Selector{resolver: resolver}
}

// SuggestedValue resolves the descriptor's value expression, if any. The
// resolved string is returned for the engine to convert to the target
// type; an unresolvable expression yields no value, letting the engine
// report the missing dependency.
func (s *Selector) SuggestedValue(d beans.Descriptor) (any, bool) {
	if d.Value == "" || s.resolver == nil {
		return nil, false
	}
	resolved, err := s.resolver.Resolve(d.Value)
	if err != nil {
		return nil, false
	}
	return resolved, true
}

var _ beans.CandidateSelector = (*Selector)(nil)
