package beans

import (
	"fmt"
	"reflect"

	"github.com/harborlight/beans/internal/reflection"
)

// Scope determines how instances produced from a definition are cached.
type Scope int

const (
	// ScopeSingleton caches one shared instance for the factory's lifetime.
	ScopeSingleton Scope = iota

	// ScopePrototype produces a fresh instance on every lookup.
	ScopePrototype
)

// String returns the string representation of the Scope.
func (s Scope) String() string {
	switch s {
	case ScopeSingleton:
		return "singleton"
	case ScopePrototype:
		return "prototype"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// IsValid checks if the scope is a known value.
func (s Scope) IsValid() bool {
	return s >= ScopeSingleton && s <= ScopePrototype
}

// Role classifies a definition by its origin.
//
// Roles only affect the severity with which an override is logged: a
// higher-role (framework-generated) definition replacing a lower-role
// (user-defined) one is reported more loudly.
type Role int

const (
	// RoleApplication marks a user-defined bean.
	RoleApplication Role = iota

	// RoleSupport marks a supporting bean of some larger configuration.
	RoleSupport

	// RoleInfrastructure marks an internal, framework-generated bean.
	RoleInfrastructure
)

// String returns the string representation of the Role.
func (r Role) String() string {
	switch r {
	case RoleApplication:
		return "application"
	case RoleSupport:
		return "support"
	case RoleInfrastructure:
		return "infrastructure"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// Definition is the declarative metadata describing how to produce a bean
// without yet creating it. Definitions are mutable until registered;
// registration validates them and the factory treats them as read-only
// afterwards.
type Definition struct {
	// Type is the produced type. Derived from the constructor's first
	// return value when a constructor is set; for producer definitions it
	// is the producer type, not the product type.
	Type reflect.Type

	// Constructor is an optional function producing the bean. Its
	// parameters are resolved as dependencies. The last return value may
	// be an error.
	Constructor any

	// Instance is an optional pre-built value served as-is. Mutually
	// exclusive with Constructor.
	Instance any

	// Scope selects instance caching behavior.
	Scope Scope

	// Lazy excludes a singleton definition from eager pre-instantiation.
	Lazy bool

	// Abstract marks a template definition that is never instantiated
	// itself; it exists only to be referenced as a Parent.
	Abstract bool

	// Primary marks this definition as the preferred winner when several
	// candidates match a required type.
	Primary bool

	// AutowireCandidate controls whether this bean may satisfy type-based
	// dependency requests. Named lookups ignore it.
	AutowireCandidate bool

	// Role classifies the definition; see Role.
	Role Role

	// Parent names a definition this one is derived from. Resetting or
	// replacing the parent cascades to this definition.
	Parent string

	// DependsOn lists bean names that must be instantiated before this
	// one, in addition to constructor-declared dependencies.
	DependsOn []string

	// Order is the explicit ordering value used when this bean is one
	// element of a multi-bean result. Lower sorts first. Nil means
	// unordered.
	Order *int

	// analysis of the constructor, cached at registration
	ctor *reflection.Constructor
}

// DefOption configures a Definition under construction.
type DefOption func(*Definition)

// WithScope sets the definition scope.
func WithScope(s Scope) DefOption {
	return func(d *Definition) { d.Scope = s }
}

// Prototype is shorthand for WithScope(ScopePrototype).
func Prototype() DefOption {
	return func(d *Definition) { d.Scope = ScopePrototype }
}

// Lazy excludes the definition from eager singleton pre-instantiation.
func Lazy() DefOption {
	return func(d *Definition) { d.Lazy = true }
}

// Abstract marks the definition as a non-instantiable template.
func Abstract() DefOption {
	return func(d *Definition) { d.Abstract = true }
}

// Primary marks the definition as the preferred disambiguation winner.
func Primary() DefOption {
	return func(d *Definition) { d.Primary = true }
}

// NotAutowireCandidate opts the definition out of type-based autowiring.
func NotAutowireCandidate() DefOption {
	return func(d *Definition) { d.AutowireCandidate = false }
}

// WithRole sets the definition role.
func WithRole(r Role) DefOption {
	return func(d *Definition) { d.Role = r }
}

// WithParent links the definition to a parent definition name.
func WithParent(name string) DefOption {
	return func(d *Definition) { d.Parent = name }
}

// DependsOn adds explicit instantiation-order dependencies.
func DependsOn(names ...string) DefOption {
	return func(d *Definition) { d.DependsOn = append(d.DependsOn, names...) }
}

// WithOrder sets the multi-bean ordering value. Lower sorts first.
func WithOrder(order int) DefOption {
	return func(d *Definition) { d.Order = &order }
}

// NewDefinition builds a singleton definition from a constructor function,
// a pre-built instance, or a reflect.Type to be zero-constructed.
func NewDefinition(target any, opts ...DefOption) *Definition {
	d := &Definition{
		Scope:             ScopeSingleton,
		Role:              RoleApplication,
		AutowireCandidate: true,
	}

	switch v := target.(type) {
	case nil:
		// caught by Validate
	case reflect.Type:
		d.Type = v
	default:
		if reflect.TypeOf(target).Kind() == reflect.Func {
			d.Constructor = target
		} else {
			d.Instance = target
			d.Type = reflect.TypeOf(target)
		}
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Validate checks definition-level constraints and resolves the produced
// type. It is called once at registration; a failure is raised immediately
// and never deferred to resolution time.
func (d *Definition) Validate() error {
	if d == nil {
		return &DefinitionValidationError{Cause: ErrDefinitionNil}
	}
	if !d.Scope.IsValid() {
		return &DefinitionValidationError{Cause: fmt.Errorf("invalid scope: %d", int(d.Scope))}
	}
	if d.Constructor != nil && d.Instance != nil {
		return &DefinitionValidationError{Cause: fmt.Errorf("definition has both a constructor and an instance")}
	}

	switch {
	case d.Constructor != nil:
		ctor, err := reflection.Analyze(d.Constructor)
		if err != nil {
			return &DefinitionValidationError{Cause: err}
		}
		d.ctor = ctor
		if d.Type == nil {
			d.Type = ctor.Product
		} else if !ctor.Product.AssignableTo(d.Type) {
			return &DefinitionValidationError{
				Cause: fmt.Errorf("constructor produces %s, not assignable to declared type %s",
					formatType(ctor.Product), formatType(d.Type)),
			}
		}
	case d.Instance != nil:
		if d.Scope != ScopeSingleton {
			return &DefinitionValidationError{Cause: fmt.Errorf("instance-backed definition must be a singleton")}
		}
		if d.Type == nil {
			d.Type = reflect.TypeOf(d.Instance)
		}
	case d.Type != nil:
		if d.Type.Kind() == reflect.Interface {
			return &DefinitionValidationError{
				Cause: fmt.Errorf("cannot zero-construct interface type %s", formatType(d.Type)),
			}
		}
	case d.Abstract:
		// pure template, nothing to produce
	default:
		return &DefinitionValidationError{Cause: ErrConstructorNil}
	}

	if d.Type != nil {
		switch d.Type.Kind() {
		case reflect.Chan:
			return &DefinitionValidationError{
				Cause: fmt.Errorf("channel type %s is not supported as a bean type", formatType(d.Type)),
			}
		case reflect.UnsafePointer:
			return &DefinitionValidationError{
				Cause: fmt.Errorf("unsafe pointer is not supported as a bean type"),
			}
		}
	}
	return nil
}

// isProducer reports whether the definition produces a Producer whose
// product, not the producer itself, is the bean.
func (d *Definition) isProducer() bool {
	return d.Type != nil && d.Type.Implements(producerType)
}

// equivalent reports whether two definitions carry the same metadata. Used
// only to pick the logging severity when a definition is replaced.
func (d *Definition) equivalent(other *Definition) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Type == other.Type &&
		d.Scope == other.Scope &&
		d.Lazy == other.Lazy &&
		d.Abstract == other.Abstract &&
		d.Primary == other.Primary &&
		d.AutowireCandidate == other.AutowireCandidate &&
		d.Role == other.Role &&
		d.Parent == other.Parent &&
		reflect.DeepEqual(d.Constructor, other.Constructor) &&
		d.Instance == other.Instance
}

// Producer is implemented by beans that manufacture another bean. The
// factory exposes the product under the registered name and the producer
// itself under the name prefixed with ProducerPrefix.
type Producer interface {
	// Produce manufactures the product bean.
	Produce() (any, error)

	// ProductType reports the type of the product.
	ProductType() reflect.Type
}

// EagerProducer is an optional extension of Producer. Producers that
// return true from EagerProduct have their product created during eager
// singleton pre-instantiation rather than on first use.
type EagerProducer interface {
	Producer

	EagerProduct() bool
}

// ProducerPrefix addresses a producer bean itself rather than its product.
const ProducerPrefix = "&"

var producerType = reflect.TypeOf((*Producer)(nil)).Elem()
