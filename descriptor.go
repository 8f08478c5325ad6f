package beans

import (
	"fmt"
	"reflect"
)

// DescriptorKind selects the resolution mode for a dependency request.
// The kind replaces subclass overrides with plain data: every special
// behavior of the engine is keyed off this tag.
type DescriptorKind int

const (
	// KindPlain resolves the dependency to a concrete value.
	KindPlain DescriptorKind = iota

	// KindOptional resolves with the required flag relaxed and wraps the
	// outcome in an Optional.
	KindOptional

	// KindProvider defers resolution: the engine returns an
	// ObjectProvider handle that re-enters resolution when invoked.
	KindProvider

	// KindMultiElement marks the descriptor as resolving one element of
	// an enclosing slice, array, or map dependency. Element resolution
	// always forces eager instantiation.
	KindMultiElement
)

// String returns the string representation of the DescriptorKind.
func (k DescriptorKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindOptional:
		return "optional"
	case KindProvider:
		return "provider"
	case KindMultiElement:
		return "multi-element"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Descriptor describes a single injection point: the required type, an
// optional name hint used as the last disambiguation tie-break, and flags
// steering how the engine resolves it.
type Descriptor struct {
	// Type is the required dependency type. Slice, array, and
	// map[string]T types are multi-bean requests resolved element-wise.
	Type reflect.Type

	// Name is the declared dependency name, used for the name-matching
	// tie-break when several candidates remain. Empty means no hint.
	Name string

	// Kind selects the resolution mode.
	Kind DescriptorKind

	// Required controls whether an empty result is an error (true) or
	// resolves to nil (false).
	Required bool

	// Eager permits type scans to instantiate producers in order to test
	// type compatibility of their products.
	Eager bool

	// Value is an optional literal or placeholder expression bound to
	// this injection point. When the candidate selector reports a
	// suggested value for it, the engine converts and returns that value
	// instead of searching for beans.
	Value string

	// Shortcut is an optional pre-resolved reference returned immediately
	// without any candidate search.
	Shortcut any

	// Nesting is the element-nesting depth; zero for a top-level
	// injection point, one for an element of a slice or map dependency.
	Nesting int

	// fallback marks the relaxed second matching pass. Custom candidate
	// selectors may honor it to loosen their matching rules.
	fallback bool
}

// Dep builds a required, eager, plain descriptor for the given type.
func Dep(t reflect.Type) Descriptor {
	return Descriptor{Type: t, Kind: KindPlain, Required: true, Eager: true}
}

// DepOf builds a required, eager, plain descriptor for the type parameter.
func DepOf[T any]() Descriptor {
	return Dep(reflect.TypeOf((*T)(nil)).Elem())
}

// AsOptional returns a copy with the required flag cleared.
func (d Descriptor) AsOptional() Descriptor {
	d.Required = false
	return d
}

// Named returns a copy carrying the given dependency name hint.
func (d Descriptor) Named(name string) Descriptor {
	d.Name = name
	return d
}

// forFallback returns the relaxed-matching variant used for the second
// candidate pass.
func (d Descriptor) forFallback() Descriptor {
	d.fallback = true
	return d
}

// IsFallback reports whether this descriptor belongs to the relaxed
// second matching pass.
func (d Descriptor) IsFallback() bool {
	return d.fallback
}

// forElement derives the descriptor for one element of a multi-bean
// request. Element resolution is always eager so that every gathered
// candidate is a live instance.
func (d Descriptor) forElement(elem reflect.Type) Descriptor {
	return Descriptor{
		Type:     elem,
		Name:     d.Name,
		Kind:     KindMultiElement,
		Required: d.Required,
		Eager:    true,
		Nesting:  d.Nesting + 1,
		fallback: d.fallback,
	}
}

// isMultiElement reports whether the descriptor resolves one element of
// an enclosing collection dependency.
func (d Descriptor) isMultiElement() bool {
	return d.Kind == KindMultiElement
}

// indicatesMultipleBeans reports whether the type semantically requests a
// set of beans rather than a single one: a slice, an array, or a map with
// string keys.
func indicatesMultipleBeans(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	case reflect.Map:
		return t.Key().Kind() == reflect.String
	default:
		return false
	}
}

// InjectionPoint identifies the dependency currently being resolved and
// the bean requesting it. Constructors may declare a parameter of this
// type to introspect the enclosing injection site.
type InjectionPoint struct {
	Descriptor Descriptor
	Requesting string
}

var injectionPointType = reflect.TypeOf(InjectionPoint{})
