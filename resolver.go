package tinyioc

// Type values are not required to be comparable, hits are confirmed with sameType.
type resolutionKey struct {
	typ  string
	name string
}

type resolution struct {
	bean *Bean
	typ  Type
	// Set when bean was the only match of a search by type.
	byType bool
}

// resolver maps dependencies to beans. It lives for a single validation run.
type resolver struct {
	registry *registry
	cache    map[resolutionKey]resolution
}

func newResolver(r *registry) *resolver {
	return &resolver{registry: r, cache: make(map[resolutionKey]resolution)}
}

// resolve returns bean that satisfies dep of owner.
// Collection dependencies are only checked and resolve to nil bean.
func (r *resolver) resolve(owner *Bean, dep *Dependency) (*Bean, error) {
	key := resolutionKey{name: dep.Name, typ: typeName(dep.Type)}

	res, ok := r.cache[key]
	if !ok || !sameType(res.typ, dep.Type) {
		var err error

		res, err = r.lookup(dep)
		if err != nil {
			return nil, newBeanDefinitionError(err, owner)
		}

		if res.bean == nil {
			return nil, nil
		}

		res.typ = dep.Type
		r.cache[key] = res
	}

	if res.byType && res.bean == owner {
		return nil, newBeanDefinitionError(newSelfResolutionError(owner, dep), owner)
	}

	return res.bean, nil
}

func (r *resolver) lookup(dep *Dependency) (resolution, error) {
	if bean, ok := r.registry.get(dep.Name); ok {
		if !bean.Type.AssignableTo(dep.Type) {
			return resolution{}, newDependencyTypeMismatchError(
				bean.Name,
				typeName(bean.Type),
				typeName(dep.Type),
			)
		}

		return resolution{bean: bean}, nil
	}

	if dep.Qualified {
		return resolution{}, newDependencyNotFoundError(dep)
	}

	if dep.collection() {
		if len(r.registry.assignable(dep.Element)) == 0 {
			return resolution{}, newCollectionElementNotFoundError(dep)
		}

		return resolution{}, nil
	}

	candidates := r.registry.assignable(dep.Type)

	switch len(candidates) {
	case 0:
		return resolution{}, newDependencyNotFoundError(dep)
	case 1:
		return resolution{bean: candidates[0], byType: true}, nil
	default:
		bean, err := primary(dep.Type, candidates)
		return resolution{bean: bean}, err
	}
}
