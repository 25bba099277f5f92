package tinyioc

import (
	"errors"
	"reflect"
	"unicode"
	"unicode/utf8"
)

const injectTag = "inject"

var ErrNilValue = errors.New("got nil value")

type componentConfiguration struct {
	qualifiers map[int]string
	name       string
	primary    bool
}

type ComponentOption func(*componentConfiguration)

var (
	// Sets bean name. Default name is derived from the produced type, see DefaultName.
	Named = func(name string) ComponentOption {
		return func(conf *componentConfiguration) { conf.name = name }
	}

	// Requires constructor parameter at index to be the bean named name.
	Qualified = func(index int, name string) ComponentOption {
		return func(conf *componentConfiguration) { conf.qualifiers[index] = name }
	}

	// Marks bean as primary among beans of assignable types.
	Primary ComponentOption = func(conf *componentConfiguration) { conf.primary = true }
)

// Returns Scanner that produces bean built by constructor.
//
// constructor should be of type func(T1, T2, ...) [T|(T, error)|(T, func(), error)].
// Parameters are matched by type unless Qualified.
// Slice, map[string]E and chan E parameters are collections of every bean assignable to E.
// If T is a struct or a pointer to a struct, its exported fields tagged `inject:""`
// are filled after construction, `inject:"name"` qualifies the field.
// Returned func() is called when container is closed.
func Component(constructor any, opts ...ComponentOption) Scanner {
	return ScannerFunc(func() ([]*Bean, error) {
		bean, err := newComponentBean(constructor, opts)
		if err != nil {
			return nil, err
		}

		return []*Bean{bean}, nil
	})
}

// Returns Scanner that produces *T with tagged fields filled from dependencies.
func Struct[T any](opts ...ComponentOption) Scanner {
	return ScannerFunc(func() ([]*Bean, error) {
		t := reflect.TypeOf(new(T)).Elem()
		if t.Kind() != reflect.Struct {
			return nil, &StructError{T: t}
		}

		bean, err := newComponentBean(func() *T { return new(T) }, opts)
		if err != nil {
			return nil, err
		}

		return []*Bean{bean}, nil
	})
}

// Returns Scanner that produces bean holding v as is.
func Value(v any, opts ...ComponentOption) Scanner {
	return ScannerFunc(func() ([]*Bean, error) {
		if v == nil {
			return nil, newBadConstructorError(ErrNilValue, nil)
		}

		t := reflect.TypeOf(v)
		fn := reflect.MakeFunc(
			reflect.FuncOf(nil, []reflect.Type{t}, false),
			func([]reflect.Value) []reflect.Value { return []reflect.Value{reflect.ValueOf(v)} },
		)

		bean, err := newComponentBean(fn.Interface(), opts)
		if err != nil {
			return nil, err
		}

		bean.Recipe.fields = nil
		bean.Dependencies = make(map[string]*Dependency)

		return []*Bean{bean}, nil
	})
}

// Returns default bean name of t: name of the type with pointers stripped and
// the first letter lowered, unless the first two letters are upper case.
func DefaultName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		return t.String()
	}

	first, size := utf8.DecodeRuneInString(name)
	if second, _ := utf8.DecodeRuneInString(name[size:]); unicode.IsUpper(second) {
		return name
	}

	return string(unicode.ToLower(first)) + name[size:]
}

func newComponentBean(constructor any, opts []ComponentOption) (*Bean, error) {
	conf := componentConfiguration{qualifiers: make(map[int]string)}
	for _, opt := range opts {
		opt(&conf)
	}

	if constructor == nil {
		return nil, newBadConstructorError(ErrNilConstructor, nil)
	}

	t := reflect.TypeOf(constructor)

	cType, err := getConstructorType(t)
	if err != nil {
		return nil, err
	}

	for index := range conf.qualifiers {
		if index < 0 || index >= t.NumIn() {
			return nil, newBadConstructorError(&QualifierIndexError{Index: index, Parameters: t.NumIn()}, t)
		}
	}

	params := make([]Injection, t.NumIn())
	for i := range params {
		params[i] = Injection{Type: t.In(i), Qualifier: conf.qualifiers[i]}
	}

	out := t.Out(0)

	fields, err := injectableFields(out)
	if err != nil {
		return nil, newBadConstructorError(err, t)
	}

	recipe := &Recipe{
		constructor:     reflect.ValueOf(constructor),
		constructorType: cType,
		params:          params,
		fields:          fields,
	}

	name := conf.name
	if name == "" {
		name = DefaultName(out)
	}

	bean := NewBean(name, ReflectType(out)).Require(recipe.dependencies()...)
	bean.Primary = conf.primary
	bean.Recipe = recipe

	return bean, nil
}

func getConstructorType(t reflect.Type) (constructorType, error) {
	cType := onlyService

	if t.Kind() != reflect.Func {
		return cType, newConstructorUnsupportedError(t)
	}

	if t.IsVariadic() {
		return cType, newBadConstructorError(ErrVariadicConstructor, t)
	}

	switch t.NumOut() {
	case 1:
		if out := t.Out(0); out.Implements(errorInterface) {
			return cType, newConstructorUnsupportedError(t)
		}
	case 2:
		cType = withError

		if errType := t.Out(1); !errType.Implements(errorInterface) {
			return cType, newConstructorUnsupportedError(t)
		}
	case 3:
		cType = withErrorAndCleanUp

		if cleanupType := t.Out(1); !cleanupType.AssignableTo(cleanUpType) {
			return cType, newConstructorUnsupportedError(t)
		}

		if errType := t.Out(2); !errType.Implements(errorInterface) {
			return cType, newConstructorUnsupportedError(t)
		}
	default:
		return cType, newConstructorUnsupportedError(t)
	}

	return cType, nil
}

// injectableFields returns fields of struct t, or of struct t points to, tagged with inject.
func injectableFields(t reflect.Type) ([]Injection, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, nil
	}

	fields := make([]Injection, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		qualifier, ok := field.Tag.Lookup(injectTag)
		if !ok {
			continue
		}

		if !field.IsExported() {
			return nil, newFieldInjectionError(t, field.Name, ErrUnexportedInjection)
		}

		fields = append(fields, Injection{
			Type:      field.Type,
			Qualifier: qualifier,
			field:     field.Index,
			name:      field.Name,
		})
	}

	return fields, nil
}
