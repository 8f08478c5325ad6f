package beans

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		target reflect.Type
		want   any
	}{
		{"AssignablePassthrough", "hello", reflect.TypeOf(""), "hello"},
		{"IntToInt64", 42, reflect.TypeOf(int64(0)), int64(42)},
		{"StringToInt", "42", reflect.TypeOf(0), 42},
		{"StringToIntTrimmed", " 42 ", reflect.TypeOf(0), 42},
		{"StringToUint", "7", reflect.TypeOf(uint16(0)), uint16(7)},
		{"StringToFloat", "2.5", reflect.TypeOf(float32(0)), float32(2.5)},
		{"StringToBool", "true", reflect.TypeOf(false), true},
		{"StringToDuration", "1m30s", reflect.TypeOf(time.Duration(0)), 90 * time.Second},
		{"StringToSlice", "a,b,c", reflect.TypeOf([]string{}), []string{"a", "b", "c"}},
		{"StringToIntSlice", "1, 2, 3", reflect.TypeOf([]int{}), []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertValue(tt.value, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertValueErrors(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		target reflect.Type
	}{
		{"NilValue", nil, reflect.TypeOf(0)},
		{"UnparsableInt", "abc", reflect.TypeOf(0)},
		{"IntOverflow", "300", reflect.TypeOf(int8(0))},
		{"UnparsableBool", "maybe", reflect.TypeOf(false)},
		{"BadDuration", "fast", reflect.TypeOf(time.Duration(0))},
		{"BadSliceElement", "1,x,3", reflect.TypeOf([]int{})},
		{"NonStringToStruct", 42, reflect.TypeOf(Database{})},
		{"StringToUnsupportedKind", "x", reflect.TypeOf(map[string]int{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convertValue(tt.value, tt.target)
			var convErr *ValueConversionError
			assert.ErrorAs(t, err, &convErr)
		})
	}
}
