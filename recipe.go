package tinyioc

import (
	"fmt"
	"reflect"
)

type constructorType int

const (
	onlyService constructorType = iota
	withError
	withErrorAndCleanUp
)

// Injection is a constructor parameter or a struct field filled from a dependency.
type Injection struct {
	Type reflect.Type
	// Empty when the dependency is matched by type.
	Qualifier string

	field []int
	name  string
}

func (inj Injection) String() string {
	if inj.Qualifier == "" {
		return inj.Type.String()
	}

	return fmt.Sprintf("%s %q", inj.Type, inj.Qualifier)
}

// dependency returns dependency declared by inj.
func (inj Injection) dependency() *Dependency {
	t := ReflectType(inj.Type)

	if inj.Qualifier != "" {
		return NewQualifiedDependency(inj.Qualifier, t)
	}

	if elem, shape, ok := collectionShape(inj.Type); ok {
		return NewCollectionDependency(t, ReflectType(elem), shape)
	}

	return NewDependency(t)
}

func (inj Injection) matches(bd binding, qualifiedFallback bool) bool {
	dep := bd.dependency

	if t, ok := reflectOf(dep.Type); !ok || t != inj.Type {
		return false
	}

	if inj.Qualifier != "" {
		return dep.Name == inj.Qualifier
	}

	if dep.Qualified && !qualifiedFallback {
		return false
	}

	if dep.Name == TypeKey(ReflectType(inj.Type)) {
		return true
	}

	return len(bd.beans) == 1 && dep.Name == bd.beans[0].Name
}

// bind prefers unqualified dependencies for parameters without qualifier,
// canonicalization may have merged them into a qualified one of the same type.
func (inj Injection) bind(bindings []binding) (reflect.Value, error) {
	for _, fallback := range []bool{false, true} {
		for _, bd := range bindings {
			if inj.matches(bd, fallback) {
				return bd.value(inj.Type)
			}
		}

		if inj.Qualifier != "" {
			break
		}
	}

	return reflect.Value{}, newMissingBindingError(inj.Type.String(), inj.Qualifier)
}

// Recipe tells how to construct a bean: call constructor with params, then fill fields.
type Recipe struct {
	constructor     reflect.Value
	params          []Injection
	fields          []Injection
	constructorType constructorType
}

// Returns every dependency declared by r.
func (r *Recipe) dependencies() []*Dependency {
	deps := make([]*Dependency, 0, len(r.params)+len(r.fields))

	for _, inj := range r.params {
		deps = append(deps, inj.dependency())
	}

	for _, inj := range r.fields {
		deps = append(deps, inj.dependency())
	}

	return deps
}

func (r *Recipe) construct(bindings []binding) (service any, cleanup func(), err error) {
	defer func() {
		if rp := recover(); rp != nil {
			err = newConstructorError(fmt.Errorf("recovered from panic: %v", rp))
		}
	}()

	args := make([]reflect.Value, len(r.params))
	for i, param := range r.params {
		arg, err := param.bind(bindings)
		if err != nil {
			return nil, nil, err
		}

		args[i] = arg
	}

	values := r.constructor.Call(args)

	if r.constructorType == onlyService && len(values) != 1 ||
		r.constructorType == withError && len(values) != 2 ||
		r.constructorType == withErrorAndCleanUp && len(values) != 3 {
		return nil, nil, newConstructorError(newUnexpectedResultError(values))
	}

	switch r.constructorType {
	case withError:
		if err, ok := (values[1].Interface()).(error); ok && err != nil {
			return nil, nil, newConstructorError(err)
		}
	case withErrorAndCleanUp:
		if err, ok := (values[2].Interface()).(error); ok && err != nil {
			return nil, nil, newConstructorError(err)
		}

		if fn := values[1]; !fn.IsNil() {
			cleanup = fn.Convert(cleanUpType).Interface().(func())
		}
	}

	service, err = r.inject(values[0], bindings)
	if err != nil {
		return nil, nil, err
	}

	return service, cleanup, nil
}

// inject fills tagged fields of v.
func (r *Recipe) inject(v reflect.Value, bindings []binding) (any, error) {
	if len(r.fields) == 0 {
		return v.Interface(), nil
	}

	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	var target reflect.Value

	switch {
	case !v.IsValid(), v.Kind() == reflect.Pointer && v.IsNil():
		return nil, ErrNilInstance
	case v.Kind() == reflect.Pointer && v.Elem().Kind() == reflect.Struct:
		target = v.Elem()
	case v.Kind() == reflect.Struct:
		target = reflect.New(v.Type()).Elem()
		target.Set(v)
		v = target
	default:
		return nil, newFieldInjectionError(v.Type(), "", ErrFieldsOnNonStruct)
	}

	for _, field := range r.fields {
		value, err := field.bind(bindings)
		if err != nil {
			return nil, newFieldInjectionError(target.Type(), field.name, err)
		}

		target.FieldByIndex(field.field).Set(value)
	}

	return v.Interface(), nil
}
