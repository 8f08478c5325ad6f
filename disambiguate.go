package beans

import "reflect"

// determineCandidate reduces a multi-entry candidate map to a single
// winner, in fixed tier order: primary flag, then lowest priority value,
// then resolvable-dependency identity or name matching against the
// dependency's declared name. An empty result with a nil error means no
// tier could decide.
func (f *Factory) determineCandidate(candidates *candidateMap, d Descriptor) (string, error) {
	primary, err := f.determinePrimaryCandidate(candidates, d.Type)
	if err != nil {
		return "", err
	}
	if primary != "" {
		return primary, nil
	}

	priority, err := f.determineHighestPriorityCandidate(candidates, d.Type)
	if err != nil {
		return "", err
	}
	if priority != "" {
		return priority, nil
	}

	// Fallback: a fixed resolvable-dependency value, or a textual match
	// against the dependency name.
	for _, name := range candidates.names {
		instance := candidates.values[name]
		if instance != nil && f.isResolvableDependencyValue(instance) {
			return name, nil
		}
		if f.matchesBeanName(name, d.Name) {
			return name, nil
		}
	}
	return "", nil
}

// determinePrimaryCandidate returns the single candidate marked primary.
// Two locally defined primaries are a fatal ambiguity; a local primary
// silently beats one inherited from an ancestor factory.
func (f *Factory) determinePrimaryCandidate(candidates *candidateMap, requiredType reflect.Type) (string, error) {
	primaryName := ""
	for _, name := range candidates.names {
		if !f.isPrimary(name, candidates.values[name]) {
			continue
		}
		if primaryName != "" {
			candidateLocal := f.store.contains(f.canonicalName(name))
			primaryLocal := f.store.contains(f.canonicalName(primaryName))
			if candidateLocal && primaryLocal {
				return "", &NotUniqueError{
					Type:       requiredType,
					Candidates: candidates.names,
					Reason:     "more than one 'primary' bean found among candidates",
				}
			}
			if candidateLocal {
				primaryName = name
			}
			continue
		}
		primaryName = name
	}
	return primaryName, nil
}

// determineHighestPriorityCandidate returns the candidate with the lowest
// priority value as supplied by the dependency comparator. Without a
// comparator the tier is skipped. Two candidates sharing the minimal value
// is a fatal ambiguity.
func (f *Factory) determineHighestPriorityCandidate(candidates *candidateMap, requiredType reflect.Type) (string, error) {
	cmp := f.dependencyComparator()
	if cmp == nil {
		return "", nil
	}

	highestName := ""
	var highest int
	for _, name := range candidates.names {
		priority, ok := cmp.Priority(candidates.values[name])
		if !ok {
			continue
		}
		if highestName != "" {
			if priority == highest {
				return "", &NotUniqueError{
					Type:       requiredType,
					Candidates: candidates.names,
					Reason:     "multiple beans found with the same priority among candidates",
				}
			}
			if priority < highest {
				highestName = name
				highest = priority
			}
			continue
		}
		highestName = name
		highest = priority
	}
	return highestName, nil
}

// isPrimary reports whether the definition behind the name carries the
// primary flag, consulting ancestors for inherited beans.
func (f *Factory) isPrimary(name string, instance any) bool {
	canonical := f.canonicalName(stripProducerPrefix(name))
	if def, ok := f.store.get(canonical); ok {
		return def.Primary
	}
	if f.parent != nil {
		return f.parent.isPrimary(name, instance)
	}
	return false
}

// isResolvableDependencyValue reports whether the instance is one of the
// explicitly registered resolvable-dependency values.
func (f *Factory) isResolvableDependencyValue(instance any) bool {
	if !comparableKey(instance) {
		return false
	}
	found := false
	f.resolvable.Range(func(_, v any) bool {
		if comparableKey(v) && v == instance {
			found = true
			return false
		}
		return true
	})
	return found
}

// matchesBeanName reports whether the candidate's name or one of its
// aliases textually matches the dependency's declared name.
func (f *Factory) matchesBeanName(name, declared string) bool {
	if declared == "" {
		return false
	}
	if declared == name {
		return true
	}
	for _, alias := range f.store.aliasesOf(f.canonicalName(name)) {
		if alias == declared {
			return true
		}
	}
	return false
}
