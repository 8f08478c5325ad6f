package beans

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/harborlight/beans/internal/graph"
)

// CircularDependencyError reports a statically detected dependency cycle
// between bean names.
type CircularDependencyError = graph.CircularDependencyError

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Base errors that get wrapped in typed errors when returned. Never
// returned bare to callers - always wrapped with context.

var (
	// Lookup errors.
	ErrNoSuchBean       = errors.New("no matching bean")
	ErrNoSuchDefinition = errors.New("no such bean definition")
	ErrBeanNameEmpty    = errors.New("bean name must not be empty")

	// Registration errors.
	ErrDefinitionNil  = errors.New("bean definition cannot be nil")
	ErrConstructorNil = errors.New("definition needs a constructor, instance, or type")

	// Lifecycle errors.
	ErrFactoryClosed = errors.New("factory has been closed")
)

var (
	_ error = (*NoSuchBeanError)(nil)
	_ error = (*NoSuchDefinitionError)(nil)
	_ error = (*NotUniqueError)(nil)
	_ error = (*BeanNotOfRequiredTypeError)(nil)
	_ error = (*CurrentlyInCreationError)(nil)
	_ error = (*StoreConflictError)(nil)
	_ error = (*DefinitionValidationError)(nil)
	_ error = (*CreationError)(nil)
	_ error = (*ValueConversionError)(nil)
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// NoSuchBeanError indicates that a required dependency had zero matching
// beans. Optional dependencies resolve to nil instead of raising this.
type NoSuchBeanError struct {
	Type reflect.Type // required type, nil for pure name lookups
	Name string       // requested name, empty for pure type lookups
}

func (e *NoSuchBeanError) Error() string {
	switch {
	case e.Name != "" && e.Type != nil:
		return fmt.Sprintf("no bean named %q of type %s available", e.Name, formatType(e.Type))
	case e.Name != "":
		return fmt.Sprintf("no bean named %q available", e.Name)
	default:
		return fmt.Sprintf("no qualifying bean of type %s available: expected at least 1 autowire candidate", formatType(e.Type))
	}
}

func (e *NoSuchBeanError) Unwrap() error { return ErrNoSuchBean }

// NoSuchDefinitionError indicates an operation referenced a definition
// name that is not registered. Raised by removal regardless of
// configuration.
type NoSuchDefinitionError struct {
	Name string
}

func (e *NoSuchDefinitionError) Error() string {
	return fmt.Sprintf("no bean definition named %q", e.Name)
}

func (e *NoSuchDefinitionError) Unwrap() error { return ErrNoSuchDefinition }

// NotUniqueError indicates multiple equally eligible candidates survived
// disambiguation. It carries the full candidate name set for diagnostics.
type NotUniqueError struct {
	Type       reflect.Type
	Candidates []string
	Reason     string // optional detail, e.g. conflicting primary flags
}

func (e *NotUniqueError) Error() string {
	names := append([]string(nil), e.Candidates...)
	sort.Strings(names)
	msg := fmt.Sprintf("no unique bean of type %s: %d candidates [%s]",
		formatType(e.Type), len(names), strings.Join(names, ", "))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *NotUniqueError) Unwrap() error { return ErrNoSuchBean }

// BeanNotOfRequiredTypeError indicates a bean whose declared type matches
// a request but whose runtime-exposed instance does not. Carries both
// types for diagnostics.
type BeanNotOfRequiredTypeError struct {
	Name     string
	Required reflect.Type
	Actual   reflect.Type
}

func (e *BeanNotOfRequiredTypeError) Error() string {
	return fmt.Sprintf("bean %q is expected to be of type %s but was actually of type %s",
		e.Name, formatType(e.Required), formatType(e.Actual))
}

// CurrentlyInCreationError indicates a bean was requested while already in
// its own creation chain - an unresolvable circular reference.
type CurrentlyInCreationError struct {
	Name string
}

func (e *CurrentlyInCreationError) Error() string {
	return fmt.Sprintf("bean %q is currently in creation: unresolvable circular reference", e.Name)
}

// StoreConflictError indicates a registration collided with an existing
// definition while overriding is disallowed.
type StoreConflictError struct {
	Name     string
	Existing *Definition // nil for alias conflicts
}

func (e *StoreConflictError) Error() string {
	if e.Existing == nil {
		return fmt.Sprintf("cannot register alias %q: the name is already bound and overriding is disallowed", e.Name)
	}
	return fmt.Sprintf("cannot register bean definition %q: a definition of type %s is already bound and overriding is disallowed",
		e.Name, formatType(e.Existing.Type))
}

// DefinitionValidationError indicates a malformed definition. Raised
// immediately at registration, never deferred.
type DefinitionValidationError struct {
	Name  string
	Cause error
}

func (e *DefinitionValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid bean definition %q: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("invalid bean definition: %v", e.Cause)
}

func (e *DefinitionValidationError) Unwrap() error { return e.Cause }

// CreationError wraps a failure while materializing a bean, attributing it
// to the bean name.
type CreationError struct {
	Name  string
	Cause error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("error creating bean %q: %v", e.Name, e.Cause)
}

func (e *CreationError) Unwrap() error { return e.Cause }

// ValueConversionError indicates a suggested injection value could not be
// converted to the target type.
type ValueConversionError struct {
	Value  any
	Target reflect.Type
	Cause  error
}

func (e *ValueConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert value %v (%T) to %s", e.Value, e.Value, formatType(e.Target))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ValueConversionError) Unwrap() error { return e.Cause }

// isCurrentlyInCreation reports whether the error chain contains a
// circular-reference failure.
func isCurrentlyInCreation(err error) bool {
	var cie *CurrentlyInCreationError
	return errors.As(err, &cie)
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Interface, reflect.Struct:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
