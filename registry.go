package tinyioc

// registry is a descriptor-by-name index that keeps declaration order.
type registry struct {
	index map[string]*Bean
	beans []*Bean
}

func newRegistry(beans []*Bean) *registry {
	index := make(map[string]*Bean, len(beans))
	for _, bean := range beans {
		index[bean.Name] = bean
	}

	return &registry{index: index, beans: beans}
}

func (r *registry) get(name string) (*Bean, bool) {
	bean, ok := r.index[name]
	return bean, ok
}

// assignable returns beans assignable to t in declaration order.
func (r *registry) assignable(t Type) []*Bean {
	result := make([]*Bean, 0, 1)

	for _, bean := range r.beans {
		if bean.Type.AssignableTo(t) {
			result = append(result, bean)
		}
	}

	return result
}

// primary picks the single primary bean among candidates.
func primary(t Type, candidates []*Bean) (*Bean, error) {
	primaries := make([]*Bean, 0, 1)

	for _, bean := range candidates {
		if bean.Primary {
			primaries = append(primaries, bean)
		}
	}

	switch len(primaries) {
	case 1:
		return primaries[0], nil
	case 0:
		return nil, newNoPrimaryBeanError(t, candidates)
	default:
		return nil, newMultiplePrimaryBeansError(t, primaries)
	}
}
