package tinyioc

import "fmt"

// Phase of a container. Phases are only ever advanced, in declaration order.
type Phase int32

const (
	// Beans are being registered.
	Collected Phase = iota
	// Names are unique and every dependency resolves without cycles.
	Validated
	// Type-derived dependency names were replaced with bean names.
	Canonicalized
	// Every bean was instantiated.
	Built
	// Lookups are allowed.
	Ready
)

func (p Phase) String() string {
	switch p {
	case Collected:
		return "Collected"
	case Validated:
		return "Validated"
	case Canonicalized:
		return "Canonicalized"
	case Built:
		return "Built"
	case Ready:
		return "Ready"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// Scanner produces bean descriptors. How it discovers them is up to the implementation.
type Scanner interface {
	Scan() ([]*Bean, error)
}

type ScannerFunc func() ([]*Bean, error)

func (fn ScannerFunc) Scan() ([]*Bean, error) {
	return fn()
}

// BeanFactory gives access to beans of a built container.
// Every method is safe for concurrent use once the container is Ready.
type BeanFactory interface {
	// Returns bean named name.
	GetBean(name string) (any, error)
	// Returns the only bean assignable to t.
	GetBeanOfType(t Type) (any, error)
	// Returns bean named name if it is assignable to t.
	GetNamedBean(name string, t Type) (any, error)
	// Returns every bean assignable to t keyed by name.
	// Returns empty map if there are none.
	GetAllBeans(t Type) (map[string]any, error)
	// Reports whether bean named name exists. Never instantiates anything.
	ContainsBean(name string) bool
	// Returns canonical dependency graph.
	// Available once container was validated.
	Graph() ([]BeanInfo, error)
	Phase() Phase
	// Runs cleanups of constructed beans, dependants first. Safe to call more than once.
	Close()
}

// Container collects bean descriptors and turns them into a BeanFactory.
// Registration methods record the first error, it is returned from Validate and Build.
// Container is not safe for concurrent registration.
type Container interface {
	BeanFactory
	// Adds bean descriptors.
	Register(beans ...*Bean) Container
	// Adds beans produced by scanners.
	Scan(scanners ...Scanner) Container
	// Adds bean built by constructor, see Component.
	Add(constructor any, opts ...ComponentOption) Container
	// Validates and canonicalizes the registry without instantiating anything.
	Validate() error
	// Validates, canonicalizes and instantiates every bean.
	Build() (BeanFactory, error)
}

// BeanInfo describes one bean of a validated container.
type BeanInfo struct {
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	Dependencies []DependencyInfo `json:"dependencies,omitempty"`
	Primary      bool             `json:"primary,omitempty"`
}

// DependencyInfo describes one resolved dependency.
type DependencyInfo struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Element   string   `json:"element,omitempty"`
	Shape     string   `json:"shape,omitempty"`
	Beans     []string `json:"beans"`
	Qualified bool     `json:"qualified,omitempty"`
}
