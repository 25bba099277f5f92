package tinyioc

// canonicalize rewrites placeholder dependency keys to names of resolved beans.
// It relies on a completed validation: every placeholder has one target.
func canonicalize(r *registry) error {
	for _, bean := range r.beans {
		for _, key := range bean.dependencyKeys() {
			dep := bean.Dependencies[key]
			if !dep.placeholder() {
				continue
			}

			target, err := canonicalTarget(r, dep)
			if err != nil {
				return newBeanDefinitionError(err, bean)
			}

			if target.Name == key {
				continue
			}

			if existing, ok := bean.Dependencies[target.Name]; ok && !sameType(existing.Type, dep.Type) {
				return newDependencyConflictError(bean, target.Name, existing, dep)
			}

			delete(bean.Dependencies, key)

			if _, ok := bean.Dependencies[target.Name]; ok {
				continue
			}

			dep.Name = target.Name
			bean.Dependencies[target.Name] = dep
		}
	}

	return nil
}

func canonicalTarget(r *registry, dep *Dependency) (*Bean, error) {
	if bean, ok := r.get(dep.Name); ok {
		return bean, nil
	}

	candidates := r.assignable(dep.Type)

	switch len(candidates) {
	case 0:
		return nil, newDependencyNotFoundError(dep)
	case 1:
		return candidates[0], nil
	default:
		return primary(dep.Type, candidates)
	}
}
