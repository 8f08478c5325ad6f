// Package reflection analyzes and invokes bean constructor functions.
//
// A constructor is an ordinary function whose parameters declare its
// dependencies. It returns the produced bean, optionally followed by an
// error as the last return value.
package reflection

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Constructor contains the analyzed shape of a constructor function.
type Constructor struct {
	Func    reflect.Value
	Type    reflect.Type
	Params  []reflect.Type
	Product reflect.Type
	// HasError reports whether the last return value is an error.
	HasError bool
	Variadic bool
}

// PanicError captures a panic raised inside a constructor invocation.
type PanicError struct {
	Constructor reflect.Type
	Panic       any
	Stack       []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("constructor %s panicked: %v\n%s", e.Constructor, e.Panic, e.Stack)
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[reflect.Value]*Constructor)
)

// Analyze inspects a constructor function and reports its dependency and
// product shape. Results are cached per function identity.
func Analyze(fn any) (*Constructor, error) {
	if fn == nil {
		return nil, fmt.Errorf("constructor cannot be nil")
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %T", fn)
	}
	if v.IsNil() {
		return nil, fmt.Errorf("constructor cannot be a nil function")
	}

	cacheMu.RLock()
	if c, ok := cache[v]; ok {
		cacheMu.RUnlock()
		return c, nil
	}
	cacheMu.RUnlock()

	t := v.Type()
	c := &Constructor{
		Func:     v,
		Type:     t,
		Variadic: t.IsVariadic(),
	}

	switch t.NumOut() {
	case 0:
		return nil, fmt.Errorf("constructor %s must return the produced value", t)
	case 1:
		if t.Out(0) == errType {
			return nil, fmt.Errorf("constructor %s returns only an error", t)
		}
		c.Product = t.Out(0)
	case 2:
		if t.Out(1) != errType {
			return nil, fmt.Errorf("constructor %s may return at most one value plus an error", t)
		}
		c.Product = t.Out(0)
		c.HasError = true
	default:
		return nil, fmt.Errorf("constructor %s may return at most one value plus an error", t)
	}

	c.Params = make([]reflect.Type, t.NumIn())
	for i := range c.Params {
		c.Params[i] = t.In(i)
	}

	cacheMu.Lock()
	cache[v] = c
	cacheMu.Unlock()
	return c, nil
}

// Invoke calls the constructor with the given arguments, recovering from
// panics and separating the produced value from a trailing error return.
func (c *Constructor) Invoke(args []any) (result any, err error) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// typed zero for nil optional dependencies
			in[i] = reflect.Zero(c.Params[min(i, len(c.Params)-1)])
		} else {
			in[i] = reflect.ValueOf(arg)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Constructor: c.Type, Panic: r, Stack: debug.Stack()}
		}
	}()

	var out []reflect.Value
	if c.Variadic && len(in) == len(c.Params) {
		out = c.Func.CallSlice(in)
	} else {
		out = c.Func.Call(in)
	}
	if c.HasError {
		if errVal := out[1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
	}
	return out[0].Interface(), nil
}
