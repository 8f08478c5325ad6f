package beans

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	dbType := reflect.TypeOf(&Database{})

	t.Run("NoSuchBeanByType", func(t *testing.T) {
		err := &NoSuchBeanError{Type: dbType}
		assert.Contains(t, err.Error(), "*Database")
		assert.Contains(t, err.Error(), "expected at least 1 autowire candidate")
		assert.ErrorIs(t, err, ErrNoSuchBean)
	})

	t.Run("NoSuchBeanByName", func(t *testing.T) {
		err := &NoSuchBeanError{Name: "db"}
		assert.Contains(t, err.Error(), `"db"`)
	})

	t.Run("NotUniqueSortsCandidates", func(t *testing.T) {
		err := &NotUniqueError{Type: dbType, Candidates: []string{"zeta", "alpha"}}
		assert.Contains(t, err.Error(), "2 candidates [alpha, zeta]")
		assert.ErrorIs(t, err, ErrNoSuchBean)
	})

	t.Run("NotUniqueWithReason", func(t *testing.T) {
		err := &NotUniqueError{Type: dbType, Candidates: []string{"a", "b"}, Reason: "more than one 'primary' bean"}
		assert.Contains(t, err.Error(), "primary")
	})

	t.Run("BeanNotOfRequiredType", func(t *testing.T) {
		err := &BeanNotOfRequiredTypeError{Name: "db", Required: dbType, Actual: reflect.TypeOf(&UserStore{})}
		assert.Contains(t, err.Error(), `"db"`)
		assert.Contains(t, err.Error(), "*Database")
		assert.Contains(t, err.Error(), "*UserStore")
	})

	t.Run("CurrentlyInCreation", func(t *testing.T) {
		err := &CurrentlyInCreationError{Name: "db"}
		assert.Contains(t, err.Error(), "circular reference")
	})

	t.Run("StoreConflictForDefinition", func(t *testing.T) {
		err := &StoreConflictError{Name: "db", Existing: &Definition{Type: dbType}}
		assert.Contains(t, err.Error(), `"db"`)
		assert.Contains(t, err.Error(), "*Database")
	})

	t.Run("StoreConflictForAlias", func(t *testing.T) {
		err := &StoreConflictError{Name: "db"}
		assert.Contains(t, err.Error(), "alias")
	})

	t.Run("CreationErrorWraps", func(t *testing.T) {
		cause := errors.New("boom")
		err := &CreationError{Name: "db", Cause: cause}
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), `"db"`)
	})

	t.Run("ValidationErrorWraps", func(t *testing.T) {
		err := &DefinitionValidationError{Name: "db", Cause: ErrDefinitionNil}
		assert.ErrorIs(t, err, ErrDefinitionNil)
	})
}

func TestFormatType(t *testing.T) {
	assert.Equal(t, "<nil>", formatType(nil))
	assert.Equal(t, "*Database", formatType(reflect.TypeOf(&Database{})))
	assert.Equal(t, "[]Database", formatType(reflect.TypeOf([]Database{})))
	assert.Equal(t, "Notifier", formatType(reflect.TypeOf((*Notifier)(nil)).Elem()))
	assert.Equal(t, "string", formatType(reflect.TypeOf("")))
	assert.Equal(t, "map[string]int", formatType(reflect.TypeOf(map[string]int{})))
}

func TestIsCurrentlyInCreation(t *testing.T) {
	inner := &CurrentlyInCreationError{Name: "a"}
	wrapped := &CreationError{Name: "b", Cause: &CreationError{Name: "a", Cause: inner}}
	assert.True(t, isCurrentlyInCreation(wrapped))
	assert.False(t, isCurrentlyInCreation(errors.New("other")))
}
