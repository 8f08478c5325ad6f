package beans

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefinitionTargets(t *testing.T) {
	t.Run("Constructor", func(t *testing.T) {
		d := NewDefinition(NewDatabase)
		require.NoError(t, d.Validate())
		assert.Equal(t, reflect.TypeOf(&Database{}), d.Type)
		assert.Equal(t, ScopeSingleton, d.Scope)
		assert.True(t, d.AutowireCandidate)
		assert.Equal(t, RoleApplication, d.Role)
	})

	t.Run("Instance", func(t *testing.T) {
		db := &Database{}
		d := NewDefinition(db)
		require.NoError(t, d.Validate())
		assert.Same(t, db, d.Instance)
		assert.Equal(t, reflect.TypeOf(db), d.Type)
	})

	t.Run("Type", func(t *testing.T) {
		d := NewDefinition(reflect.TypeOf(&Database{}))
		require.NoError(t, d.Validate())
		assert.Equal(t, reflect.TypeOf(&Database{}), d.Type)
	})

	t.Run("Options", func(t *testing.T) {
		order := 7
		d := NewDefinition(NewDatabase,
			Prototype(), Lazy(), Primary(), NotAutowireCandidate(),
			WithRole(RoleInfrastructure), WithParent("base"),
			DependsOn("x", "y"), WithOrder(order))

		assert.Equal(t, ScopePrototype, d.Scope)
		assert.True(t, d.Lazy)
		assert.True(t, d.Primary)
		assert.False(t, d.AutowireCandidate)
		assert.Equal(t, RoleInfrastructure, d.Role)
		assert.Equal(t, "base", d.Parent)
		assert.Equal(t, []string{"x", "y"}, d.DependsOn)
		require.NotNil(t, d.Order)
		assert.Equal(t, order, *d.Order)
	})
}

func TestDefinitionValidate(t *testing.T) {
	t.Run("NilTarget", func(t *testing.T) {
		err := NewDefinition(nil).Validate()
		assert.ErrorIs(t, err, ErrConstructorNil)
	})

	t.Run("ConstructorWithErrorReturn", func(t *testing.T) {
		d := NewDefinition(func() (*Database, error) { return &Database{}, nil })
		require.NoError(t, d.Validate())
		assert.Equal(t, reflect.TypeOf(&Database{}), d.Type)
	})

	t.Run("ConstructorReturningNothing", func(t *testing.T) {
		assert.Error(t, NewDefinition(func() {}).Validate())
	})

	t.Run("ConstructorReturningOnlyError", func(t *testing.T) {
		assert.Error(t, NewDefinition(func() error { return nil }).Validate())
	})

	t.Run("ConstructorAndInstanceConflict", func(t *testing.T) {
		d := NewDefinition(NewDatabase)
		d.Instance = &Database{}
		assert.Error(t, d.Validate())
	})

	t.Run("PrototypeInstanceRejected", func(t *testing.T) {
		d := NewDefinition(&Database{}, Prototype())
		assert.Error(t, d.Validate())
	})

	t.Run("InterfaceZeroConstructRejected", func(t *testing.T) {
		d := NewDefinition(reflect.TypeOf((*Notifier)(nil)).Elem())
		assert.Error(t, d.Validate())
	})

	t.Run("ChannelTypeRejected", func(t *testing.T) {
		d := NewDefinition(func() chan int { return make(chan int) })
		assert.Error(t, d.Validate())
	})

	t.Run("InvalidScope", func(t *testing.T) {
		d := NewDefinition(NewDatabase, WithScope(Scope(42)))
		assert.Error(t, d.Validate())
	})

	t.Run("AbstractWithoutTarget", func(t *testing.T) {
		assert.NoError(t, NewDefinition(nil, Abstract()).Validate())
	})
}

func TestDefinitionEquivalent(t *testing.T) {
	a := NewDefinition(reflect.TypeOf(&Database{}))
	b := NewDefinition(reflect.TypeOf(&Database{}))
	assert.True(t, a.equivalent(b))

	b.Lazy = true
	assert.False(t, a.equivalent(b))
	assert.False(t, a.equivalent(nil))
}

func TestScopeAndRoleStrings(t *testing.T) {
	assert.Equal(t, "singleton", ScopeSingleton.String())
	assert.Equal(t, "prototype", ScopePrototype.String())
	assert.False(t, Scope(9).IsValid())
	assert.Equal(t, "application", RoleApplication.String())
	assert.Equal(t, "infrastructure", RoleInfrastructure.String())
}

func TestDescriptorBuilders(t *testing.T) {
	d := DepOf[Notifier]()
	assert.Equal(t, reflect.TypeOf((*Notifier)(nil)).Elem(), d.Type)
	assert.True(t, d.Required)
	assert.True(t, d.Eager)
	assert.Equal(t, KindPlain, d.Kind)

	opt := d.AsOptional()
	assert.False(t, opt.Required)
	assert.True(t, d.Required, "AsOptional must not mutate the receiver")

	named := d.Named("primary")
	assert.Equal(t, "primary", named.Name)

	elem := d.forElement(reflect.TypeOf(&EmailNotifier{}))
	assert.Equal(t, KindMultiElement, elem.Kind)
	assert.True(t, elem.Eager)
	assert.Equal(t, 1, elem.Nesting)
	assert.True(t, elem.isMultiElement())

	fb := d.forFallback()
	assert.True(t, fb.IsFallback())
	assert.False(t, d.IsFallback())
}

func TestIndicatesMultipleBeans(t *testing.T) {
	assert.True(t, indicatesMultipleBeans(reflect.TypeOf([]Notifier{})))
	assert.True(t, indicatesMultipleBeans(reflect.TypeOf(map[string]Notifier{})))
	assert.False(t, indicatesMultipleBeans(reflect.TypeOf(map[int]Notifier{})))
	assert.False(t, indicatesMultipleBeans(reflect.TypeOf(&EmailNotifier{})))
	assert.False(t, indicatesMultipleBeans(nil))
}
