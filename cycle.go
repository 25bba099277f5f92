package tinyioc

// trail accumulates beans required along the current validation path.
type trail struct {
	entries []TrailEntry
	onPath  map[string]bool
}

func newTrail() *trail {
	return &trail{onPath: make(map[string]bool)}
}

func (t *trail) push(bean *Bean, deps []*Bean) {
	t.entries = append(t.entries, TrailEntry{Bean: bean.Name, Dependencies: beanNames(deps)})
	t.onPath[bean.Name] = true
}

func (t *trail) pop() {
	last := t.entries[len(t.entries)-1]
	t.entries = t.entries[:len(t.entries)-1]
	delete(t.onPath, last.Bean)
}

// with returns trail entries ended by bean's own dependency list.
func (t *trail) with(bean *Bean, deps []*Bean) []TrailEntry {
	entries := make([]TrailEntry, len(t.entries), len(t.entries)+1)
	copy(entries, t.entries)

	return append(entries, TrailEntry{Bean: bean.Name, Dependencies: beanNames(deps)})
}

// validation is a single combined resolution and cycle detection pass.
type validation struct {
	resolver *resolver
	// Beans whose whole reachable graph is proven acyclic.
	acyclic map[*Bean]bool
}

func newValidation(r *registry) *validation {
	return &validation{resolver: newResolver(r), acyclic: make(map[*Bean]bool)}
}

func (v *validation) run(beans []*Bean) error {
	for _, root := range beans {
		if err := v.validateRoot(root); err != nil {
			return err
		}
	}

	return nil
}

func (v *validation) validateRoot(root *Bean) error {
	deps, err := v.resolveAll(root)
	if err != nil {
		return err
	}

	if err := v.checkKeys(root); err != nil {
		return err
	}

	path := newTrail()
	path.push(root, deps)

	for _, dep := range deps {
		if err := v.detectCycle(root, dep, path); err != nil {
			return err
		}
	}

	v.acyclic[root] = true

	return nil
}

// detectCycle walks dependencies of target, always relative to the same root.
func (v *validation) detectCycle(root, target *Bean, path *trail) error {
	if v.acyclic[target] {
		return nil
	}

	deps, err := v.resolveAll(target)
	if err != nil {
		return err
	}

	for _, dep := range deps {
		if dep == root {
			return newCircularDependencyError(root.Name, path.with(target, deps))
		}
	}

	for _, dep := range deps {
		if path.onPath[dep.Name] {
			return newCircularDependencyError(root.Name, path.with(target, deps))
		}
	}

	path.push(target, deps)

	for _, dep := range deps {
		if err := v.detectCycle(root, dep, path); err != nil {
			return err
		}
	}

	path.pop()

	v.acyclic[target] = true

	return nil
}

// resolveAll resolves scalar dependencies of bean in key order.
func (v *validation) resolveAll(bean *Bean) ([]*Bean, error) {
	deps := make([]*Bean, 0, len(bean.Dependencies))

	for _, key := range bean.dependencyKeys() {
		target, err := v.resolver.resolve(bean, bean.Dependencies[key])
		if err != nil {
			return nil, err
		}

		if target != nil {
			deps = append(deps, target)
		}
	}

	return deps, nil
}

// checkKeys reports dependencies of bean that would share one key of different types
// once placeholders are renamed to the beans they resolve to.
func (v *validation) checkKeys(bean *Bean) error {
	keys := make(map[string]*Dependency, len(bean.Dependencies))
	moved := make(map[string]*Dependency)

	for _, key := range bean.dependencyKeys() {
		dep := bean.Dependencies[key]
		if !dep.placeholder() {
			keys[key] = dep
			continue
		}

		target, err := v.resolver.resolve(bean, dep)
		if err != nil {
			return err
		}

		if target.Name == key {
			keys[key] = dep
		} else {
			moved[key] = dep
		}
	}

	for _, key := range bean.dependencyKeys() {
		dep, ok := moved[key]
		if !ok {
			continue
		}

		target, err := v.resolver.resolve(bean, dep)
		if err != nil {
			return err
		}

		existing, ok := keys[target.Name]
		switch {
		case !ok:
			keys[target.Name] = dep
		case !sameType(existing.Type, dep.Type):
			return newDependencyConflictError(bean, target.Name, existing, dep)
		}
	}

	return nil
}
