package tinyioc

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

const (
	constructorTypeStr string = "func(T1, ...) [T|(T, error)|(T, func(), error)]"
)

var (
	errorInterface = reflect.TypeOf((*error)(nil)).Elem()
	cleanUpType    = reflect.TypeOf((*func())(nil)).Elem()

	ErrNoBeans             = errors.New("bean list is absent")
	ErrNilBean             = errors.New("got nil bean")
	ErrNilBeanType         = errors.New("bean type is nil")
	ErrNotReady            = errors.New("container is not ready, call Build first")
	ErrRegistryFrozen      = errors.New("container does not accept beans after validation")
	ErrNoRecipe            = errors.New("bean has no construction recipe")
	ErrNilInstance         = errors.New("constructor returned nil instance for bean with injectable fields")
	ErrFieldsOnNonStruct   = errors.New("fields can be injected only into a struct or a pointer to a struct")
	ErrVariadicConstructor = errors.New("variadic constructor is not supported")
	ErrUnexportedInjection = errors.New("inject tag can be used only on exported fields")
	ErrNilConstructor      = errors.New("got nil constructor")
)

func newConstructorUnsupportedError(constructorType reflect.Type) error {
	return newBadConstructorError(
		&ConstructorTemplateError{SupportedConstructorTemplates: constructorTypeStr},
		constructorType,
	)
}

func newBadConstructorError(cause error, constructorType reflect.Type) error {
	return &BadConstructorError{
		cause:           cause,
		ConstructorType: constructorType,
	}
}

// BadConstructorError is returned by Component scanners for constructors of unsupported shape.
type BadConstructorError struct {
	cause           error
	ConstructorType reflect.Type
}

func (err *BadConstructorError) Error() string {
	return fmt.Sprintf("bad constructor %s: %s", err.ConstructorType, err.cause)
}

func (err *BadConstructorError) Unwrap() error {
	return err.cause
}

type ConstructorTemplateError struct {
	SupportedConstructorTemplates string
}

func (err *ConstructorTemplateError) Error() string {
	return fmt.Sprintf("only %s can be used", err.SupportedConstructorTemplates)
}

type QualifierIndexError struct {
	Index      int
	Parameters int
}

func (err *QualifierIndexError) Error() string {
	return fmt.Sprintf(
		"qualifier for parameter %d, constructor has %d parameters",
		err.Index,
		err.Parameters,
	)
}

type StructError struct {
	T reflect.Type
}

func (err *StructError) Error() string {
	return fmt.Sprintf("tinyioc.Struct can only be used with a struct, got %s", err.T)
}

func newFieldInjectionError(t reflect.Type, field string, cause error) error {
	return &FieldInjectionError{T: t, Field: field, cause: cause}
}

type FieldInjectionError struct {
	cause error
	T     reflect.Type
	Field string
}

func (err *FieldInjectionError) Error() string {
	if err.Field == "" {
		return fmt.Sprintf("cannot inject fields of %s: %s", err.T, err.cause)
	}

	return fmt.Sprintf("cannot inject %s.%s: %s", err.T, err.Field, err.cause)
}

func (err *FieldInjectionError) Unwrap() error {
	return err.cause
}

func newDuplicateBeanError(groups map[string][]*Bean) error {
	names := make([]string, 0, len(groups))
	types := make(map[string][]string, len(groups))

	for name, beans := range groups {
		names = append(names, name)

		for _, bean := range beans {
			types[name] = append(types[name], typeName(bean.Type))
		}
	}

	slices.Sort(names)

	return &DuplicateBeanError{Names: names, Types: types}
}

// DuplicateBeanError lists every bean name declared more than once.
type DuplicateBeanError struct {
	// Types of beans declared under each name, in declaration order.
	Types map[string][]string
	Names []string
}

func (err *DuplicateBeanError) Error() string {
	parts := make([]string, len(err.Names))
	for i, name := range err.Names {
		parts[i] = fmt.Sprintf("%q [%s]", name, strings.Join(err.Types[name], ", "))
	}

	return "found beans with duplicate names: " + strings.Join(parts, "; ")
}

func newInvalidBeanNameError(bean *Bean) error {
	return &InvalidNameError{Name: bean.Name, BeanType: typeName(bean.Type)}
}

func newInvalidDependencyNameError(bean *Bean, key string) error {
	return &InvalidNameError{
		Name:       key,
		BeanName:   bean.Name,
		BeanType:   typeName(bean.Type),
		Dependency: true,
	}
}

// InvalidNameError is returned for blank names and names with space, tab, CR or LF.
type InvalidNameError struct {
	Name string
	// Owning bean of the dependency, empty for bean names.
	BeanName   string
	BeanType   string
	Dependency bool
}

func (err *InvalidNameError) Error() string {
	if err.Dependency {
		return fmt.Sprintf(
			"bean %q of type %s has dependency with invalid name %q: name must not be blank or contain whitespace",
			err.BeanName,
			err.BeanType,
			err.Name,
		)
	}

	return fmt.Sprintf(
		"bean of type %s has invalid name %q: name must not be blank or contain whitespace",
		err.BeanType,
		err.Name,
	)
}

func newMalformedDependencyError(bean *Bean, key string, reason string) error {
	return &MalformedDependencyError{BeanName: bean.Name, Key: key, Reason: reason}
}

type MalformedDependencyError struct {
	BeanName string
	Key      string
	Reason   string
}

func (err *MalformedDependencyError) Error() string {
	return fmt.Sprintf("bean %q has malformed dependency %q: %s", err.BeanName, err.Key, err.Reason)
}

func newBeanDefinitionError(cause error, bean *Bean) error {
	return &BeanDefinitionError{
		cause:    cause,
		BeanName: bean.Name,
		BeanType: typeName(bean.Type),
	}
}

// BeanDefinitionError wraps a resolution failure of one bean's dependency.
type BeanDefinitionError struct {
	cause    error
	BeanName string
	BeanType string
}

func (err *BeanDefinitionError) Error() string {
	return fmt.Sprintf("invalid bean %q of type %s: %s", err.BeanName, err.BeanType, err.cause)
}

func (err *BeanDefinitionError) Unwrap() error {
	return err.cause
}

func newDependencyTypeMismatchError(name, actual, required string) error {
	return &DependencyTypeMismatchError{Dependency: name, Actual: actual, Required: required}
}

type DependencyTypeMismatchError struct {
	Dependency string
	Actual     string
	Required   string
}

func (err *DependencyTypeMismatchError) Error() string {
	return fmt.Sprintf(
		"bean %q has type %s which is not assignable to required %s",
		err.Dependency,
		err.Actual,
		err.Required,
	)
}

func newDependencyNotFoundError(dep *Dependency) error {
	return &DependencyNotFoundError{
		Name:      dep.Name,
		Type:      typeName(dep.Type),
		Qualified: dep.Qualified,
	}
}

func newCollectionElementNotFoundError(dep *Dependency) error {
	return &DependencyNotFoundError{
		Name:    dep.Name,
		Type:    typeName(dep.Type),
		Element: typeName(dep.Element),
	}
}

type DependencyNotFoundError struct {
	Name string
	Type string
	// Set for collection dependencies.
	Element   string
	Qualified bool
}

func (err *DependencyNotFoundError) Error() string {
	switch {
	case err.Element != "":
		return fmt.Sprintf("no bean with type %s found for collection %s", err.Element, err.Type)
	case err.Qualified:
		return fmt.Sprintf("no bean named %q found for qualified dependency of type %s", err.Name, err.Type)
	default:
		return fmt.Sprintf("no bean found for dependency %q of type %s", err.Name, err.Type)
	}
}

func newNoPrimaryBeanError(t Type, candidates []*Bean) error {
	return &NoPrimaryBeanError{Type: typeName(t), Candidates: beanNames(candidates)}
}

type NoPrimaryBeanError struct {
	Type       string
	Candidates []string
}

func (err *NoPrimaryBeanError) Error() string {
	return fmt.Sprintf(
		"more than one bean with type %s found and none is marked primary: [%s]",
		err.Type,
		strings.Join(err.Candidates, ", "),
	)
}

func newMultiplePrimaryBeansError(t Type, primaries []*Bean) error {
	return &MultiplePrimaryBeansError{Type: typeName(t), Primaries: beanNames(primaries)}
}

type MultiplePrimaryBeansError struct {
	Type      string
	Primaries []string
}

func (err *MultiplePrimaryBeansError) Error() string {
	return fmt.Sprintf(
		"more than one primary bean with type %s found: [%s]",
		err.Type,
		strings.Join(err.Primaries, ", "),
	)
}

func newSelfResolutionError(bean *Bean, dep *Dependency) error {
	return &SelfResolutionError{BeanName: bean.Name, Dependency: dep.Name}
}

// SelfResolutionError means a search by type resolved a bean to itself.
// Earlier resolution steps make this impossible, so it signals a broken invariant.
type SelfResolutionError struct {
	BeanName   string
	Dependency string
}

func (err *SelfResolutionError) Error() string {
	return fmt.Sprintf(
		"dependency %q of bean %q was resolved to the bean itself by type",
		err.Dependency,
		err.BeanName,
	)
}

// TrailEntry is one hop of a dependency chain.
type TrailEntry struct {
	Bean         string
	Dependencies []string
}

func (e TrailEntry) String() string {
	return fmt.Sprintf("%s depends on: [%s]", e.Bean, strings.Join(e.Dependencies, ", "))
}

func newCircularDependencyError(bean string, trail []TrailEntry) error {
	return &CircularDependencyError{Bean: bean, Trail: slices.Clone(trail)}
}

type CircularDependencyError struct {
	Bean  string
	Trail []TrailEntry
}

func (err *CircularDependencyError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "circular dependency detected for bean %q:", err.Bean)
	for _, entry := range err.Trail {
		sb.WriteString("\n\t")
		sb.WriteString(entry.String())
	}

	return sb.String()
}

func newDependencyConflictError(bean *Bean, key string, existing, placeholder *Dependency) error {
	return &DependencyConflictError{
		BeanName: bean.Name,
		Key:      key,
		Existing: typeName(existing.Type),
		Incoming: typeName(placeholder.Type),
	}
}

// DependencyConflictError is returned when canonicalization moves a dependency
// onto a key already used by a dependency of another type.
type DependencyConflictError struct {
	BeanName string
	Key      string
	Existing string
	Incoming string
}

func (err *DependencyConflictError) Error() string {
	return fmt.Sprintf(
		"bean %q requires %q both as %s and as %s",
		err.BeanName,
		err.Key,
		err.Existing,
		err.Incoming,
	)
}

func newInstantiationError(cause error, bean *Bean) error {
	return &InstantiationError{
		cause:    cause,
		BeanName: bean.Name,
		BeanType: typeName(bean.Type),
	}
}

type InstantiationError struct {
	cause    error
	BeanName string
	BeanType string
}

func (err *InstantiationError) Error() string {
	return fmt.Sprintf("cannot instantiate bean %q of type %s: %s", err.BeanName, err.BeanType, err.cause)
}

func (err *InstantiationError) Unwrap() error {
	return err.cause
}

func newMissingBindingError(t, name string) error {
	return &MissingBindingError{Type: t, Name: name}
}

// MissingBindingError is returned when no resolved dependency matches a parameter or field.
type MissingBindingError struct {
	Type string
	Name string
}

func (err *MissingBindingError) Error() string {
	if err.Name == "" {
		return fmt.Sprintf("no resolved dependency of type %s", err.Type)
	}

	return fmt.Sprintf("no resolved dependency %q of type %s", err.Name, err.Type)
}

func newUnsupportedCollectionError(t string) error {
	return &UnsupportedCollectionError{Type: t}
}

type UnsupportedCollectionError struct {
	Type string
}

func (err *UnsupportedCollectionError) Error() string {
	return fmt.Sprintf("%s cannot hold a collection of beans", err.Type)
}

func newConstructorError(cause error) error {
	return &ConstructorError{
		cause: cause,
	}
}

type ConstructorError struct {
	cause error
}

func (err *ConstructorError) Error() string {
	return fmt.Sprintf("constructor returned an error: %s", err.cause)
}

func (err *ConstructorError) Unwrap() error {
	return err.cause
}

func newUnexpectedResultError(values []reflect.Value) error {
	return &UnexpectedResultError{
		Result: values,
	}
}

type UnexpectedResultError struct {
	Result []reflect.Value
}

func (err *UnexpectedResultError) Error() string {
	return fmt.Sprintf("unexpected result: %#v", err.Result)
}

func newBeanNotFoundError(name string, t Type) error {
	err := &BeanNotFoundError{Name: name}
	if t != nil {
		err.Type = t.String()
	}

	return err
}

type BeanNotFoundError struct {
	Name string
	Type string
}

func (err *BeanNotFoundError) Error() string {
	switch {
	case err.Name != "" && err.Type != "":
		return fmt.Sprintf("no bean named %q with type %s", err.Name, err.Type)
	case err.Name != "":
		return fmt.Sprintf("no bean named %q", err.Name)
	default:
		return fmt.Sprintf("no bean with type %s", err.Type)
	}
}

func newAmbiguousBeanError(t Type, beans []*Bean) error {
	return &AmbiguousBeanError{Type: typeName(t), Names: beanNames(beans)}
}

type AmbiguousBeanError struct {
	Type  string
	Names []string
}

func (err *AmbiguousBeanError) Error() string {
	return fmt.Sprintf(
		"expected single bean with type %s, found %d: [%s]",
		err.Type,
		len(err.Names),
		strings.Join(err.Names, ", "),
	)
}

func beanNames(beans []*Bean) []string {
	names := make([]string, len(beans))
	for i, bean := range beans {
		names[i] = bean.Name
	}

	return names
}
