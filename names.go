package tinyioc

import "strings"

const illegalNameChars = " \t\r\n"

// validateNames checks identities of beans and their dependency keys.
func validateNames(beans []*Bean) error {
	if beans == nil {
		return ErrNoBeans
	}

	groups := make(map[string][]*Bean, len(beans))
	for _, bean := range beans {
		if bean == nil {
			return ErrNilBean
		}

		groups[bean.Name] = append(groups[bean.Name], bean)
	}

	duplicates := make(map[string][]*Bean)
	for name, group := range groups {
		if len(group) > 1 {
			duplicates[name] = group
		}
	}

	if len(duplicates) > 0 {
		return newDuplicateBeanError(duplicates)
	}

	for _, bean := range beans {
		if !validName(bean.Name) {
			return newInvalidBeanNameError(bean)
		}

		if bean.Type == nil {
			return newBeanDefinitionError(ErrNilBeanType, bean)
		}

		for _, key := range bean.dependencyKeys() {
			if !validName(key) {
				return newInvalidDependencyNameError(bean, key)
			}

			dep := bean.Dependencies[key]

			switch {
			case dep == nil:
				return newMalformedDependencyError(bean, key, "dependency is nil")
			case dep.Name != key:
				return newMalformedDependencyError(bean, key, "key differs from dependency name "+dep.Name)
			case dep.Type == nil:
				return newMalformedDependencyError(bean, key, "dependency type is nil")
			}
		}
	}

	return nil
}

func validName(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.ContainsAny(name, illegalNameChars)
}
