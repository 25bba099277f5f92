package tinyioc

import "reflect"

// Type is what a bean produces and what a dependency requires.
// AssignableTo reports whether a value of this type is usable where required is expected.
type Type interface {
	String() string
	AssignableTo(required Type) bool
}

// Returns Type backed by the Go type T.
func TypeOf[T any]() Type {
	return ReflectType(reflect.TypeOf(new(T)).Elem())
}

// Returns Type backed by t, or nil if t is nil.
func ReflectType(t reflect.Type) Type {
	if t == nil {
		return nil
	}

	return reflectType{t: t}
}

type reflectType struct {
	t reflect.Type
}

func (rt reflectType) String() string {
	return rt.t.String()
}

func (rt reflectType) AssignableTo(required Type) bool {
	other, ok := required.(reflectType)
	if !ok {
		return false
	}

	return rt.t.AssignableTo(other.t)
}

// Returns underlying reflect.Type of a reflect-backed Type.
func reflectOf(t Type) (reflect.Type, bool) {
	rt, ok := t.(reflectType)
	if !ok {
		return nil, false
	}

	return rt.t, true
}

// Type values are not required to be comparable.
func sameType(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.String() == b.String() && a.AssignableTo(b) && b.AssignableTo(a)
}

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
