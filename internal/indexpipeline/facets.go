package indexpipeline

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Aman-CERP/searchd/internal/codec"
	"github.com/Aman-CERP/searchd/internal/extract"
	"github.com/Aman-CERP/searchd/internal/tokenize"
)

// facetLeaf walks every leaf of every field selected by attrs across
// raw's stored fields and calls fn once per (fieldID, value).
func facetLeaf(raw []byte, fields *codec.FieldsIDMap, attrs []string, fn func(fieldID codec.FieldID, value any)) error {
	if raw == nil || len(attrs) == 0 {
		return nil
	}

	var walkErr error
	codec.NewKVReader(raw).Iter(func(fieldID codec.FieldID, fieldBytes []byte) bool {
		name, ok := fields.Name(fieldID)
		if !ok || !tokenize.Selected(attrs, name) {
			return true
		}

		dec := json.NewDecoder(bytes.NewReader(fieldBytes))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err != nil {
			walkErr = err
			return false
		}

		leaf := func(path string, v any) {
			id, ok := fields.ID(path)
			if !ok {
				return
			}
			fn(id, v)
		}

		switch v := value.(type) {
		case map[string]any:
			tokenize.SeekLeafValues(v, attrs, name, leaf)
		case []any:
			tokenize.SeekLeafValues(v, attrs, name, leaf)
		default:
			leaf(name, value)
		}
		return true
	})
	return walkErr
}

// facetStringKey groups by field id, then by the lowercased facet
// value, so range scans over one field's distinct values are
// contiguous.
func facetStringKey(fieldID codec.FieldID, value string) string {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], fieldID)
	return string(buf[:]) + strings.ToLower(value)
}

// facetNumberKey encodes fieldID followed by a sign-and-magnitude
// bit-flipped float64, the standard trick for making IEEE-754 bit
// patterns compare in numeric order as plain byte strings (negative
// numbers get all bits flipped, non-negative numbers get only the
// sign bit set), so ascending bbolt key order is ascending numeric
// order.
func facetNumberKey(fieldID codec.FieldID, value float64) string {
	bits := math.Float64bits(value)
	if value < 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	var buf [10]byte
	binary.BigEndian.PutUint16(buf[0:2], fieldID)
	binary.BigEndian.PutUint64(buf[2:10], bits)
	return string(buf[:])
}

// facetExtraction runs both facet extractors in one pass over the
// faceted attributes (the union of filterable and sortable), splitting
// string-typed and number-typed leaves into their respective tables.
func facetExtraction(fields *codec.FieldsIDMap, changes []resolvedChange, params Params) (strings_, numbers *extract.Sorter, err error) {
	attrs := append(append([]string{}, params.FilterableAttributes...), params.SortableAttributes...)
	if len(attrs) == 0 {
		return extract.NewSorter(), extract.NewSorter(), nil
	}

	stringSorter := extract.NewSorter()
	stringCache, err := extract.NewCache(params.cacheCapacity(), stringSorter)
	if err != nil {
		return nil, nil, err
	}

	numberSorter := extract.NewSorter()
	numberCache, err := extract.NewCache(params.cacheCapacity(), numberSorter)
	if err != nil {
		return nil, nil, err
	}

	apply := func(raw []byte, docID uint32, isAdd bool) error {
		return facetLeaf(raw, fields, attrs, func(fieldID codec.FieldID, value any) {
			switch v := value.(type) {
			case json.Number:
				f, err := strconv.ParseFloat(v.String(), 64)
				if err != nil {
					return
				}
				key := facetNumberKey(fieldID, f)
				if isAdd {
					numberCache.InsertAdd(key, docID)
				} else {
					numberCache.InsertDel(key, docID)
				}
			case string:
				key := facetStringKey(fieldID, v)
				if isAdd {
					stringCache.InsertAdd(key, docID)
				} else {
					stringCache.InsertDel(key, docID)
				}
			case bool:
				key := facetStringKey(fieldID, strconv.FormatBool(v))
				if isAdd {
					stringCache.InsertAdd(key, docID)
				} else {
					stringCache.InsertDel(key, docID)
				}
			}
		})
	}

	for _, ch := range changes {
		if ch.Old != nil {
			if err := apply(ch.Old, uint32(ch.id), false); err != nil {
				return nil, nil, err
			}
		}
		if ch.New != nil {
			if err := apply(ch.New, uint32(ch.id), true); err != nil {
				return nil, nil, err
			}
		}
	}

	return stringCache.Finish(), numberCache.Finish(), nil
}
