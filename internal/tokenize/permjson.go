// Package tokenize implements the field-path walker and tokenizer
// (component C): selecting which leaf values of a document are
// searchable via a permissive "contained in" path rule, then turning
// the selected strings and numbers into positioned word tokens.
package tokenize

const pathSplit = '.'

// ContainedIn reports whether selector matches key under the permissive
// containment rule: selector matches key if selector starts with key
// and the next character (if any) is the path separator. So both
// "doggo" and its descendant "doggo.name" are contained in the key
// "doggo", while a sibling like "doggoX" is not.
func ContainedIn(selector, key string) bool {
	if len(selector) < len(key) || selector[:len(key)] != key {
		return false
	}
	rest := selector[len(key):]
	if rest == "" {
		return true
	}
	return rest[0] == pathSplit
}

// LeafSeeker is called once per leaf value reached while walking a
// document, with its fully-qualified dotted path.
type LeafSeeker func(path string, value any)

// SeekLeafValues walks value (the result of unmarshalling one JSON
// field, so an object, array, or scalar) and calls seek for every
// reachable leaf whose path is selected by selectors. A nil selectors
// slice means "everything is selected".
//
// baseKey is the name of the top-level field owning value; every
// reported path is baseKey, or baseKey plus a dotted suffix.
func SeekLeafValues(value any, selectors []string, baseKey string, seek LeafSeeker) {
	switch v := value.(type) {
	case map[string]any:
		seekLeafValuesInObject(v, selectors, baseKey, seek)
	case []any:
		seekLeafValuesInArray(v, selectors, baseKey, seek)
	default:
		seek(baseKey, value)
	}
}

func seekLeafValuesInObject(obj map[string]any, selectors []string, baseKey string, seek LeafSeeker) {
	for key, value := range obj {
		fullKey := key
		if baseKey != "" {
			fullKey = baseKey + string(pathSplit) + key
		}

		if !selected(selectors, fullKey) {
			continue
		}

		switch v := value.(type) {
		case map[string]any:
			seekLeafValuesInObject(v, selectors, fullKey, seek)
		case []any:
			seekLeafValuesInArray(v, selectors, fullKey, seek)
		default:
			seek(fullKey, value)
		}
	}
}

func seekLeafValuesInArray(values []any, selectors []string, baseKey string, seek LeafSeeker) {
	for _, value := range values {
		switch v := value.(type) {
		case map[string]any:
			seekLeafValuesInObject(v, selectors, baseKey, seek)
		case []any:
			seekLeafValuesInArray(v, selectors, baseKey, seek)
		default:
			seek(baseKey, value)
		}
	}
}

// Selected reports whether fullKey should be descended into or
// reported, given selectors. A selector selects fullKey if either
// contains the other — so a user-specified "doggo" keeps walking into
// "doggo.name", and a user-specified "doggo.name" still lets us walk
// down through the intermediate "doggo" object. A nil selectors slice
// selects everything.
func Selected(selectors []string, fullKey string) bool {
	if selectors == nil {
		return true
	}
	for _, selector := range selectors {
		if ContainedIn(selector, fullKey) || ContainedIn(fullKey, selector) {
			return true
		}
	}
	return false
}

func selected(selectors []string, fullKey string) bool {
	return Selected(selectors, fullKey)
}
