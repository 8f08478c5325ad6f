package beans

import "reflect"

// Get resolves the single bean assignable to T, applying the usual
// disambiguation when several candidates match.
func Get[T any](f *Factory) (T, error) {
	var zero T
	v, err := f.ResolveDependency(DepOf[T](), "")
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, &BeanNotOfRequiredTypeError{
			Required: reflect.TypeOf((*T)(nil)).Elem(),
			Actual:   reflect.TypeOf(v),
		}
	}
	return out, nil
}

// GetNamed resolves the bean bound under name, enforcing that it is
// assignable to T.
func GetNamed[T any](f *Factory, name string) (T, error) {
	var zero T
	v, err := f.getBean(name, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, &BeanNotOfRequiredTypeError{
			Name:     name,
			Required: reflect.TypeOf((*T)(nil)).Elem(),
			Actual:   reflect.TypeOf(v),
		}
	}
	return out, nil
}

// GetAll resolves every bean assignable to T, ordered by the factory's
// dependency comparator.
func GetAll[T any](f *Factory) ([]T, error) {
	v, err := f.ResolveDependency(DepOf[[]T](), "")
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.([]T), nil
}
