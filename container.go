package tinyioc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	_ Container   = new(container)
	_ BeanFactory = new(container)

	ErrContainerClosed = errors.New("container is closed")
)

type ContainerConfiguration struct {
	// When set, container is closed once CleanupCtx is done or the process gets SIGINT or SIGTERM.
	CleanupCtx context.Context
	Observers  []Observer
}

type ContainerOption func(*ContainerConfiguration)

var (
	WithCleanupContext = func(ctx context.Context) ContainerOption {
		return func(conf *ContainerConfiguration) { conf.CleanupCtx = ctx }
	}

	WithObservers = func(observers ...Observer) ContainerOption {
		return func(conf *ContainerConfiguration) { conf.Observers = append(conf.Observers, observers...) }
	}
)

// Returns new Container.
func New(opts ...ContainerOption) Container {
	var conf ContainerConfiguration

	for _, opt := range opts {
		opt(&conf)
	}

	return newContainer(conf)
}

// Creates new Container and registers beans in it.
func Register(beans ...*Bean) Container {
	return New().Register(beans...)
}

// Creates new Container and adds beans produced by scanners.
func Scan(scanners ...Scanner) Container {
	return New().Scan(scanners...)
}

// Creates new Container and adds bean built by constructor.
func Add(constructor any, opts ...ComponentOption) Container {
	return New().Add(constructor, opts...)
}

func newContainer(conf ContainerConfiguration) *container {
	return &container{
		conf:         conf,
		beans:        make([]*Bean, 0),
		err:          &atomic.Value{},
		constructing: make(map[*Bean]bool),
		edges:        make(map[*Bean][]*Bean),
		closed:       make(chan struct{}),
	}
}

type container struct {
	conf         ContainerConfiguration
	err          *atomic.Value
	registry     *registry
	cleanup      *cleanupNode
	constructing map[*Bean]bool
	edges        map[*Bean][]*Bean
	closed       chan struct{}
	beans        []*Bean
	stack        []*Bean
	mu           sync.Mutex
	closeOnce    sync.Once
	phase        atomic.Int32
}

func (c *container) Register(beans ...*Bean) Container {
	if errVal := c.err.Load(); errVal != nil {
		return c
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Phase() != Collected {
		c.fail(ErrRegistryFrozen)
		return c
	}

	c.beans = append(c.beans, beans...)

	return c
}

func (c *container) Scan(scanners ...Scanner) Container {
	for _, scanner := range scanners {
		if errVal := c.err.Load(); errVal != nil {
			return c
		}

		beans, err := scanner.Scan()
		if err != nil {
			c.fail(err)
			return c
		}

		c.Register(beans...)
	}

	return c
}

func (c *container) Add(constructor any, opts ...ComponentOption) Container {
	return c.Scan(Component(constructor, opts...))
}

func (c *container) Phase() Phase {
	return Phase(c.phase.Load())
}

func (c *container) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.validate()
}

func (c *container) validate() error {
	if errVal := c.err.Load(); errVal != nil {
		return errVal.(storedError).error
	}

	if c.Phase() >= Canonicalized {
		return nil
	}

	started := time.Now()

	err := validateNames(c.beans)
	if err == nil {
		c.registry = newRegistry(c.beans)
		err = newValidation(c.registry).run(c.registry.beans)
	}

	c.notifyPhase(Validated, started, err)

	if err != nil {
		return c.fail(err)
	}

	c.phase.Store(int32(Validated))

	started = time.Now()
	err = canonicalize(c.registry)

	c.notifyPhase(Canonicalized, started, err)

	if err != nil {
		return c.fail(err)
	}

	c.phase.Store(int32(Canonicalized))

	return nil
}

func (c *container) Build() (BeanFactory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validate(); err != nil {
		return nil, err
	}

	if c.Phase() == Ready {
		return c, nil
	}

	select {
	case <-c.closed:
		return nil, c.fail(ErrContainerClosed)
	default:
	}

	started := time.Now()

	for _, bean := range c.registry.beans {
		if _, err := c.materialize(bean); err != nil {
			c.notifyPhase(Built, started, err)
			c.releaseBuilt()

			return nil, c.fail(err)
		}
	}

	c.notifyPhase(Built, started, nil)
	c.phase.Store(int32(Built))

	started = time.Now()
	c.cleanup = buildCleanupNodes(c.registry.beans, c.edges)

	if c.conf.CleanupCtx != nil {
		go cleanupWorker(c.conf.CleanupCtx, c)
	}

	c.phase.Store(int32(Ready))
	c.notifyPhase(Ready, started, nil)

	return c, nil
}

// storedError keeps concrete type stored in atomic.Value the same.
type storedError struct {
	error
}

func (c *container) fail(err error) error {
	c.err.CompareAndSwap(nil, storedError{err})
	return err
}

// releaseBuilt runs cleanups of beans built before a failed build.
func (c *container) releaseBuilt() {
	buildCleanupNodes(c.registry.beans, c.edges).clean()
}

// materialize returns instance of bean, building its dependencies first.
func (c *container) materialize(bean *Bean) (any, error) {
	if value, ok := bean.Instance(); ok {
		return value, nil
	}

	if c.constructing[bean] {
		return nil, newInstantiationError(newCircularDependencyError(bean.Name, c.constructionTrail(bean)), bean)
	}

	c.constructing[bean] = true
	c.stack = append(c.stack, bean)

	defer func() {
		delete(c.constructing, bean)
		c.stack = c.stack[:len(c.stack)-1]
	}()

	bindings := make([]binding, 0, len(bean.Dependencies))
	targets := make([]*Bean, 0, len(bean.Dependencies))

	for _, key := range bean.dependencyKeys() {
		dep := bean.Dependencies[key]

		beans, err := c.dependencyBeans(bean, dep)
		if err != nil {
			return nil, newInstantiationError(err, bean)
		}

		for _, target := range beans {
			if _, err := c.materialize(target); err != nil {
				return nil, err
			}
		}

		bindings = append(bindings, binding{dependency: dep, beans: beans})
		targets = append(targets, beans...)
	}

	started := time.Now()
	value, err := bean.instance(bindings...)

	c.notifyBean(bean, started, err)

	if err != nil {
		return nil, err
	}

	c.edges[bean] = targets

	return value, nil
}

// dependencyBeans returns beans dep is bound to.
// Collection dependencies never include the owner itself.
func (c *container) dependencyBeans(owner *Bean, dep *Dependency) ([]*Bean, error) {
	if !dep.collection() {
		target, ok := c.registry.get(dep.Name)
		if !ok {
			return nil, newDependencyNotFoundError(dep)
		}

		return []*Bean{target}, nil
	}

	beans := make([]*Bean, 0)
	for _, bean := range c.registry.assignable(dep.Element) {
		if bean != owner {
			beans = append(beans, bean)
		}
	}

	return beans, nil
}

func (c *container) constructionTrail(bean *Bean) []TrailEntry {
	trail := make([]TrailEntry, len(c.stack))

	for i, b := range c.stack {
		next := bean
		if i+1 < len(c.stack) {
			next = c.stack[i+1]
		}

		trail[i] = TrailEntry{Bean: b.Name, Dependencies: []string{next.Name}}
	}

	return trail
}

func (c *container) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)

		c.mu.Lock()
		cleanup := c.cleanup
		c.mu.Unlock()

		if cleanup != nil {
			cleanup.clean()
		}
	})
}

func (c *container) ready() bool {
	return c.Phase() == Ready
}

func (c *container) GetBean(name string) (any, error) {
	if !c.ready() {
		return nil, ErrNotReady
	}

	bean, ok := c.registry.get(name)
	if !ok {
		return nil, newBeanNotFoundError(name, nil)
	}

	value, _ := bean.Instance()

	return value, nil
}

func (c *container) GetBeanOfType(t Type) (any, error) {
	if !c.ready() {
		return nil, ErrNotReady
	}

	beans := c.registry.assignable(t)

	switch len(beans) {
	case 0:
		return nil, newBeanNotFoundError("", t)
	case 1:
		value, _ := beans[0].Instance()
		return value, nil
	default:
		return nil, newAmbiguousBeanError(t, beans)
	}
}

func (c *container) GetNamedBean(name string, t Type) (any, error) {
	if !c.ready() {
		return nil, ErrNotReady
	}

	bean, ok := c.registry.get(name)
	if !ok || !bean.Type.AssignableTo(t) {
		return nil, newBeanNotFoundError(name, t)
	}

	value, _ := bean.Instance()

	return value, nil
}

func (c *container) GetAllBeans(t Type) (map[string]any, error) {
	if !c.ready() {
		return nil, ErrNotReady
	}

	beans := c.registry.assignable(t)
	result := make(map[string]any, len(beans))

	for _, bean := range beans {
		result[bean.Name], _ = bean.Instance()
	}

	return result, nil
}

func (c *container) ContainsBean(name string) bool {
	if !c.ready() {
		return false
	}

	_, ok := c.registry.get(name)

	return ok
}

func (c *container) Graph() ([]BeanInfo, error) {
	if c.Phase() < Canonicalized {
		return nil, ErrNotReady
	}

	infos := make([]BeanInfo, len(c.registry.beans))
	for i, bean := range c.registry.beans {
		infos[i] = BeanInfo{
			Name:    bean.Name,
			Type:    typeName(bean.Type),
			Primary: bean.Primary,
		}

		for _, key := range bean.dependencyKeys() {
			dep := bean.Dependencies[key]
			beans, _ := c.dependencyBeans(bean, dep)

			info := DependencyInfo{
				Name:      dep.Name,
				Type:      typeName(dep.Type),
				Qualified: dep.Qualified,
				Beans:     beanNames(beans),
			}

			if dep.collection() {
				info.Element = typeName(dep.Element)
				info.Shape = dep.Shape.String()
			}

			infos[i].Dependencies = append(infos[i].Dependencies, info)
		}
	}

	return infos, nil
}
