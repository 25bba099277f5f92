package tinyioc

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Shape of a collection dependency.
type Shape int

const (
	// Slice of every assignable bean in registry order.
	List Shape = iota
	// map[string]T of every assignable bean keyed by bean name.
	Set
	// Buffered and closed channel with every assignable bean in registry order.
	Queue
)

func (s Shape) String() string {
	switch s {
	case List:
		return "list"
	case Set:
		return "set"
	case Queue:
		return "queue"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Dependency is a requirement of one bean on another bean or on a collection of beans.
type Dependency struct {
	// Explicit qualifier, or key derived from Type when no name was given, see TypeKey.
	Name string
	Type Type
	// Element is set only for collection dependencies.
	Element   Type
	Shape     Shape
	Qualified bool
}

// Returns dependency on a bean assignable to t.
func NewDependency(t Type) *Dependency {
	return &Dependency{Name: TypeKey(t), Type: t}
}

// Returns dependency on a bean named name that must be assignable to t.
func NewQualifiedDependency(name string, t Type) *Dependency {
	return &Dependency{Name: name, Type: t, Qualified: true}
}

// Returns dependency on every bean assignable to element, gathered into t.
func NewCollectionDependency(t, element Type, shape Shape) *Dependency {
	return &Dependency{Name: TypeKey(t), Type: t, Element: element, Shape: shape}
}

// Returns dependency key derived from t: its name with whitespace runs replaced by "_".
func TypeKey(t Type) string {
	return strings.Join(strings.Fields(typeName(t)), "_")
}

func (d *Dependency) collection() bool {
	return d.Element != nil
}

// placeholder reports whether Name is still derived from Type.
func (d *Dependency) placeholder() bool {
	return !d.Qualified && !d.collection() && d.Name == TypeKey(d.Type)
}

func (d *Dependency) String() string {
	if d.collection() {
		return fmt.Sprintf("%s %s of %s", d.Name, d.Shape, typeName(d.Element))
	}

	return fmt.Sprintf("%s (%s)", d.Name, typeName(d.Type))
}

// Bean describes one component managed by the container.
type Bean struct {
	Type Type
	// Keyed by Dependency.Name.
	Dependencies map[string]*Dependency
	// Nil Recipe makes a bean that can be validated but not instantiated.
	Recipe  *Recipe
	Name    string
	Primary bool

	value   any
	cleanup func()
	mu      sync.Mutex
	built   bool
}

// Returns bean without dependencies.
func NewBean(name string, t Type) *Bean {
	return &Bean{Name: name, Type: t, Dependencies: make(map[string]*Dependency)}
}

// Adds dependencies keyed by their names and returns b.
func (b *Bean) Require(deps ...*Dependency) *Bean {
	if b.Dependencies == nil {
		b.Dependencies = make(map[string]*Dependency, len(deps))
	}

	for _, dep := range deps {
		b.Dependencies[dep.Name] = dep
	}

	return b
}

// Marks b as primary and returns it.
func (b *Bean) AsPrimary() *Bean {
	b.Primary = true
	return b
}

// Returns constructed instance and true once b was built.
func (b *Bean) Instance() (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.value, b.built
}

func (b *Bean) String() string {
	return fmt.Sprintf("%s (%s)", b.Name, typeName(b.Type))
}

// dependencyKeys returns dependency keys in sorted order.
func (b *Bean) dependencyKeys() []string {
	keys := make([]string, 0, len(b.Dependencies))
	for key := range b.Dependencies {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}

// binding is a dependency together with the beans it was resolved to.
type binding struct {
	dependency *Dependency
	beans      []*Bean
}

// instance constructs b at most once. Beans in bindings must be built already.
func (b *Bean) instance(bindings ...binding) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.built {
		return b.value, nil
	}

	if b.Recipe == nil {
		return nil, newInstantiationError(ErrNoRecipe, b)
	}

	value, cleanup, err := b.Recipe.construct(bindings)
	if err != nil {
		return nil, newInstantiationError(err, b)
	}

	b.value = value
	b.cleanup = cleanup
	b.built = true

	return value, nil
}

func (b *Bean) release() (func(), bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cleanup := b.cleanup
	b.cleanup = nil

	return cleanup, cleanup != nil
}

func (bd binding) value(t reflect.Type) (reflect.Value, error) {
	if bd.dependency.collection() {
		return adaptCollection(t, bd.beans)
	}

	if len(bd.beans) != 1 {
		return reflect.Value{}, newMissingBindingError(t.String(), bd.dependency.Name)
	}

	return instanceValue(bd.beans[0], t)
}

func instanceValue(bean *Bean, t reflect.Type) (reflect.Value, error) {
	value, ok := bean.Instance()
	if !ok {
		return reflect.Value{}, newMissingBindingError(t.String(), bean.Name)
	}

	if value == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, newDependencyTypeMismatchError(bean.Name, v.Type().String(), t.String())
	}

	return v, nil
}
