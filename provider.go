package beans

import "errors"

// Optional wraps the outcome of a dependency resolved with the required
// flag relaxed: either a present value or an explicit absence.
type Optional struct {
	value   any
	present bool
}

// OptionalOf wraps a present value.
func OptionalOf(v any) Optional {
	return Optional{value: v, present: true}
}

// Get returns the wrapped value and whether it is present.
func (o Optional) Get() (any, bool) {
	return o.value, o.present
}

// Present reports whether a value was resolved.
func (o Optional) Present() bool {
	return o.present
}

// MustGet returns the wrapped value, panicking on absence. Intended for
// callers that have already checked Present.
func (o Optional) MustGet() any {
	if !o.present {
		panic("beans: Optional value is absent")
	}
	return o.value
}

// ObjectProvider is a deferred resolution handle: a value type referencing
// the factory, the immutable descriptor, and the requesting bean name. It
// captures no other state; every invocation re-enters the engine through
// its public entry point, observing the registry as it is at call time.
type ObjectProvider struct {
	factory    *Factory
	descriptor Descriptor
	requesting string
}

// Get resolves the dependency, raising if no matching bean exists.
func (p ObjectProvider) Get() (any, error) {
	d := p.descriptor
	d.Kind = KindPlain
	d.Required = true
	return p.factory.ResolveDependency(d, p.requesting)
}

// IfAvailable resolves the dependency leniently: a missing bean yields
// (nil, nil) rather than an error.
func (p ObjectProvider) IfAvailable() (any, error) {
	d := p.descriptor
	d.Kind = KindPlain
	d.Required = false
	return p.factory.ResolveDependency(d, p.requesting)
}

// IfUnique resolves the dependency only when exactly one candidate
// matches; both a missing bean and an ambiguous set yield (nil, nil).
func (p ObjectProvider) IfUnique() (any, error) {
	v, err := p.IfAvailable()
	if err != nil {
		var notUnique *NotUniqueError
		if errors.As(err, &notUnique) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}
