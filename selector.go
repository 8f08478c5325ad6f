package beans

// CandidateSelector is the pluggable strategy deciding whether a bean may
// satisfy a type-based dependency request and whether an injection point
// has a suggested value bound to it (a literal or a resolved placeholder
// expression) that short-circuits the candidate search.
type CandidateSelector interface {
	// IsAutowireCandidate reports whether the named definition may
	// satisfy the descriptor.
	IsAutowireCandidate(name string, def *Definition, d Descriptor) bool

	// SuggestedValue returns a value bound to the injection point, if
	// any. The engine converts the value to the descriptor's type.
	SuggestedValue(d Descriptor) (any, bool)
}

// SimpleCandidateSelector is the default selector: it honors the
// definition-level autowire-candidate opt-out and suggests no values.
type SimpleCandidateSelector struct{}

// IsAutowireCandidate reports the definition's AutowireCandidate flag.
// Manually registered singletons (nil definition) are always candidates.
func (SimpleCandidateSelector) IsAutowireCandidate(name string, def *Definition, d Descriptor) bool {
	if def == nil {
		return true
	}
	return def.AutowireCandidate
}

// SuggestedValue reports no value.
func (SimpleCandidateSelector) SuggestedValue(d Descriptor) (any, bool) {
	return nil, false
}

var _ CandidateSelector = SimpleCandidateSelector{}
