package store

import (
	"bytes"
	"encoding/json"

	"github.com/Aman-CERP/searchd/internal/codec"
	"github.com/Aman-CERP/searchd/internal/tokenize"
)

// RetrieveVectorsMode governs what happens to the reserved "_vectors"
// field when a document is projected to JSON.
type RetrieveVectorsMode int

const (
	// RetrieveVectorsIgnore leaves "_vectors" exactly as stored.
	RetrieveVectorsIgnore RetrieveVectorsMode = iota
	// RetrieveVectorsHide strips "_vectors" from the rendered document.
	RetrieveVectorsHide
	// RetrieveVectorsRetrieve forces "_vectors" to be present even if
	// the field selector would otherwise have excluded it.
	RetrieveVectorsRetrieve
)

const vectorsFieldName = "_vectors"

// ProjectOptions configures Project's output.
type ProjectOptions struct {
	// Fields, when non-nil, is the accept list of top-level or dotted
	// attribute selectors (permissive containment). Nil selects
	// every attribute.
	Fields []string
	// Skip is the skip list; it takes precedence over Fields.
	Skip            []string
	RetrieveVectors RetrieveVectorsMode
}

// Project renders kv to a JSON-compatible map, honoring field
// selection and the vectors mode.
func Project(kv *codec.KVReader, fields *codec.FieldsIDMap, opts ProjectOptions) (map[string]any, error) {
	out := make(map[string]any)

	var walkErr error
	kv.Iter(func(id codec.FieldID, raw []byte) bool {
		name, ok := fields.Name(id)
		if !ok {
			return true
		}

		if name == vectorsFieldName {
			switch opts.RetrieveVectors {
			case RetrieveVectorsHide:
				return true
			case RetrieveVectorsRetrieve:
				// fall through to normal decode/selection below, bypassing Skip/Fields.
			default:
				if !selectedFor(opts, name) {
					return true
				}
			}
			value, err := decodeJSON(raw)
			if err != nil {
				walkErr = err
				return false
			}
			out[name] = value
			return true
		}

		if !selectedFor(opts, name) {
			return true
		}

		value, err := decodeJSON(raw)
		if err != nil {
			walkErr = err
			return false
		}

		pruned, keep := pruneValue(name, value, opts)
		if keep {
			out[name] = pruned
		}
		return true
	})

	return out, walkErr
}

func selectedFor(opts ProjectOptions, path string) bool {
	if opts.Skip != nil && skipMatches(opts.Skip, path) {
		return false
	}
	return tokenize.Selected(opts.Fields, path)
}

func skipMatches(skip []string, path string) bool {
	for _, s := range skip {
		if tokenize.ContainedIn(s, path) || tokenize.ContainedIn(path, s) {
			return true
		}
	}
	return false
}

// pruneValue descends into value, dropping any sub-object/array member
// whose dotted path is not selected. Scalars at a selected path are
// kept whole; an empty object/array is itself emitted as a leaf,
// matching the walker's "empty containers self-emit" rule.
func pruneValue(path string, value any, opts ProjectOptions) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			return v, selectedFor(opts, path)
		}
		result := make(map[string]any)
		for key, child := range v {
			childPath := path + "." + key
			if !selectedFor(opts, childPath) {
				continue
			}
			pruned, keep := pruneValue(childPath, child, opts)
			if keep {
				result[key] = pruned
			}
		}
		return result, true
	case []any:
		if len(v) == 0 {
			return v, selectedFor(opts, path)
		}
		result := make([]any, 0, len(v))
		for _, child := range v {
			pruned, keep := pruneValue(path, child, opts)
			if keep {
				result = append(result, pruned)
			}
		}
		return result, true
	default:
		return value, true
	}
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
