package tinyioc

import "fmt"

// Returns the only bean assignable to T.
func Get[T any](bf BeanFactory) (T, error) {
	var zero T

	value, err := bf.GetBeanOfType(TypeOf[T]())
	if err != nil {
		return zero, err
	}

	return cast[T](value)
}

// Returns bean named name if it is assignable to T.
func GetNamed[T any](bf BeanFactory, name string) (T, error) {
	var zero T

	value, err := bf.GetNamedBean(name, TypeOf[T]())
	if err != nil {
		return zero, err
	}

	return cast[T](value)
}

// Returns every bean assignable to T keyed by name.
func GetAll[T any](bf BeanFactory) (map[string]T, error) {
	values, err := bf.GetAllBeans(TypeOf[T]())
	if err != nil {
		return nil, err
	}

	result := make(map[string]T, len(values))
	for name, value := range values {
		v, err := cast[T](value)
		if err != nil {
			return nil, err
		}

		result[name] = v
	}

	return result, nil
}

// Same as Get, but panics in case of an error.
func MustGet[T any](bf BeanFactory) T {
	value, err := Get[T](bf)
	if err != nil {
		panic(err)
	}

	return value
}

func cast[T any](value any) (T, error) {
	var zero T

	if value == nil {
		return zero, nil
	}

	v, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("bean of type %T cannot be used as %s", value, TypeOf[T]())
	}

	return v, nil
}
