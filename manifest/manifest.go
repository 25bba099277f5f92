// Package manifest declares beans in a YAML document instead of Go code.
//
// Manifest beans carry no construction recipe: a container built from them can be
// validated and inspected with Graph, but not instantiated.
//
//	types:
//	  - name: Postgres
//	    assignableTo: [Database]
//	beans:
//	  - name: primaryDB
//	    type: Postgres
//	    primary: true
//	  - name: repository
//	    type: Repository
//	    dependencies:
//	      - type: Database
//	      - type: Cache
//	        qualifier: redis
//	      - elementType: Plugin
//	        shape: set
//
// Every type is assignable to itself and, transitively, to its assignableTo list.
// Bean types that are not declared in types are declared implicitly.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/andriiyaremenko/tinyioc"
)

var _ tinyioc.Scanner = new(Manifest)

type TypeSpec struct {
	Name         string   `yaml:"name"`
	AssignableTo []string `yaml:"assignableTo"`
}

type DependencySpec struct {
	Type        string `yaml:"type"`
	Qualifier   string `yaml:"qualifier"`
	ElementType string `yaml:"elementType"`
	Shape       string `yaml:"shape"`
}

type BeanSpec struct {
	Name         string           `yaml:"name"`
	Type         string           `yaml:"type"`
	Dependencies []DependencySpec `yaml:"dependencies"`
	Primary      bool             `yaml:"primary"`
}

// Manifest is a parsed bean manifest. It is a tinyioc.Scanner.
type Manifest struct {
	universe *universe
	Types    []TypeSpec `yaml:"types"`
	Beans    []BeanSpec `yaml:"beans"`
}

// Reads and parses manifest at path.
// UTF-8 and UTF-16 files with byte order mark are accepted.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			schemaErr.Path = path
		}

		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}

	return m, nil
}

// Reads and parses manifest from r.
func Read(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parses YAML manifest, validates it against the manifest JSON Schema and
// resolves every type name it uses.
func Parse(data []byte) (*Manifest, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc == nil {
		return nil, ErrEmptyManifest
	}

	if err := validateSchema(doc); err != nil {
		return nil, &SchemaError{cause: err}
	}

	m := new(Manifest)
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}

	u, err := newUniverse(m.Types, m.Beans)
	if err != nil {
		return nil, err
	}

	m.universe = u

	// resolve every type once so Scan never fails on names
	if _, err := m.Scan(); err != nil {
		return nil, err
	}

	return m, nil
}

// Returns type declared by the manifest.
func (m *Manifest) Type(name string) (tinyioc.Type, bool) {
	if m.universe == nil {
		return nil, false
	}

	t, ok := m.universe.types[name]
	return t, ok
}

// Returns fresh bean descriptors on every call.
func (m *Manifest) Scan() ([]*tinyioc.Bean, error) {
	if m.universe == nil {
		return nil, ErrEmptyManifest
	}

	beans := make([]*tinyioc.Bean, 0, len(m.Beans))

	for _, spec := range m.Beans {
		t, err := m.universe.lookup(spec.Type, fmt.Sprintf("bean %q", spec.Name))
		if err != nil {
			return nil, err
		}

		bean := tinyioc.NewBean(spec.Name, t)
		bean.Primary = spec.Primary

		for i, depSpec := range spec.Dependencies {
			dep, err := m.dependency(depSpec, fmt.Sprintf("dependency %d of bean %q", i, spec.Name))
			if err != nil {
				return nil, err
			}

			bean.Require(dep)
		}

		beans = append(beans, bean)
	}

	return beans, nil
}

func (m *Manifest) dependency(spec DependencySpec, context string) (*tinyioc.Dependency, error) {
	if spec.ElementType != "" {
		element, err := m.universe.lookup(spec.ElementType, context)
		if err != nil {
			return nil, err
		}

		shape := parseShape(spec.Shape)

		return tinyioc.NewCollectionDependency(&collectionType{element: element, shape: shape}, element, shape), nil
	}

	t, err := m.universe.lookup(spec.Type, context)
	if err != nil {
		return nil, err
	}

	if spec.Qualifier != "" {
		return tinyioc.NewQualifiedDependency(spec.Qualifier, t), nil
	}

	return tinyioc.NewDependency(t), nil
}

func parseShape(shape string) tinyioc.Shape {
	switch shape {
	case "set":
		return tinyioc.Set
	case "queue":
		return tinyioc.Queue
	default:
		return tinyioc.List
	}
}
