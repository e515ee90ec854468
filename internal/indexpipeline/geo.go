package indexpipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/blevesearch/geo"

	"github.com/Aman-CERP/searchd/internal/codec"
	"github.com/Aman-CERP/searchd/internal/extract"
)

// geoHashPrecision bounds how many hex digits of the morton-encoded
// hash become the bbolt key prefix: a coarser prefix buckets nearby
// points together so a bounding-box filter can range-scan one prefix
// span instead of touching every point, the Go stand-in for the
// spec's geo R-tree (documented as a deliberate simplification in
// DESIGN.md).
const geoHashPrecision = 12

func geoHashKey(lat, lng float64) string {
	hash := geo.MortonHash(lng, lat)
	return fmt.Sprintf("%0*x", geoHashPrecision, hash>>(64-4*geoHashPrecision))
}

// geoPointsExtraction reads params.GeoAttribute (expected to decode to
// an object with numeric "lat"/"lng" leaves) off each change and
// indexes it under its geohash prefix.
func geoPointsExtraction(fields *codec.FieldsIDMap, changes []resolvedChange, params Params) (*extract.Sorter, error) {
	if params.GeoAttribute == "" {
		return extract.NewSorter(), nil
	}

	sorter := extract.NewSorter()
	cache, err := extract.NewCache(params.cacheCapacity(), sorter)
	if err != nil {
		return nil, err
	}

	apply := func(raw []byte, docID uint32, isAdd bool) error {
		if raw == nil {
			return nil
		}
		lat, lng, ok, err := extractGeoPoint(raw, fields, params.GeoAttribute)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		key := geoHashKey(lat, lng)
		if isAdd {
			cache.InsertAdd(key, docID)
		} else {
			cache.InsertDel(key, docID)
		}
		return nil
	}

	for _, ch := range changes {
		if err := apply(ch.Old, uint32(ch.id), false); err != nil {
			return nil, err
		}
		if err := apply(ch.New, uint32(ch.id), true); err != nil {
			return nil, err
		}
	}

	return cache.Finish(), nil
}

func extractGeoPoint(raw []byte, fields *codec.FieldsIDMap, attribute string) (lat, lng float64, ok bool, err error) {
	var found bool
	c := codec.NewKVReader(raw)
	c.Iter(func(fieldID codec.FieldID, fieldBytes []byte) bool {
		name, nameOK := fields.Name(fieldID)
		if !nameOK || name != attribute {
			return true
		}

		dec := json.NewDecoder(bytes.NewReader(fieldBytes))
		dec.UseNumber()
		var value map[string]any
		if decErr := dec.Decode(&value); decErr != nil {
			err = decErr
			return false
		}

		latValue, latOK := numberLeaf(value["lat"])
		lngValue, lngOK := numberLeaf(value["lng"])
		if latOK && lngOK {
			lat, lng, found = latValue, lngValue, true
		}
		return false
	})
	return lat, lng, found, err
}

func numberLeaf(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	return f, err == nil
}
