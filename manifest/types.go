package manifest

import (
	"fmt"
	"slices"

	"github.com/andriiyaremenko/tinyioc"
)

var _ tinyioc.Type = new(declaredType)

// declaredType is a type known only by name.
// Its supertypes are the transitive closure of assignableTo.
type declaredType struct {
	universe *universe
	supers   map[string]bool
	name     string
}

func (t *declaredType) String() string {
	return t.name
}

func (t *declaredType) AssignableTo(required tinyioc.Type) bool {
	other, ok := required.(*declaredType)
	if !ok || other.universe != t.universe {
		return false
	}

	return other.name == t.name || t.supers[other.name]
}

// collectionType holds beans of element in a given shape.
type collectionType struct {
	element *declaredType
	shape   tinyioc.Shape
}

func (t *collectionType) String() string {
	switch t.shape {
	case tinyioc.Set:
		return "map[string]" + t.element.name
	case tinyioc.Queue:
		return "chan " + t.element.name
	default:
		return "[]" + t.element.name
	}
}

func (t *collectionType) AssignableTo(required tinyioc.Type) bool {
	other, ok := required.(*collectionType)
	return ok && other.shape == t.shape && other.element == t.element
}

// universe is the set of types declared by one manifest.
type universe struct {
	types map[string]*declaredType
	order []string
}

func newUniverse(specs []TypeSpec, beans []BeanSpec) (*universe, error) {
	u := &universe{types: make(map[string]*declaredType)}
	edges := make(map[string][]string)

	for _, spec := range specs {
		if _, ok := u.types[spec.Name]; ok {
			return nil, &DuplicateTypeError{Name: spec.Name}
		}

		u.declare(spec.Name)
		edges[spec.Name] = spec.AssignableTo
	}

	for _, spec := range specs {
		for _, super := range spec.AssignableTo {
			if _, ok := u.types[super]; !ok {
				return nil, &UnknownTypeError{Name: super, Context: fmt.Sprintf("assignableTo of type %q", spec.Name)}
			}
		}
	}

	// bean types that are not declared are leaf types
	for _, bean := range beans {
		if _, ok := u.types[bean.Type]; !ok {
			u.declare(bean.Type)
		}
	}

	for _, name := range u.order {
		t := u.types[name]

		stack := slices.Clone(edges[name])
		for len(stack) > 0 {
			super := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if super == name || t.supers[super] {
				continue
			}

			t.supers[super] = true
			stack = append(stack, edges[super]...)
		}
	}

	return u, nil
}

func (u *universe) declare(name string) {
	u.types[name] = &declaredType{universe: u, name: name, supers: make(map[string]bool)}
	u.order = append(u.order, name)
}

func (u *universe) lookup(name, context string) (*declaredType, error) {
	t, ok := u.types[name]
	if !ok {
		return nil, &UnknownTypeError{Name: name, Context: context}
	}

	return t, nil
}
