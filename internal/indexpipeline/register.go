package indexpipeline

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/Aman-CERP/searchd/internal/codec"
	"github.com/Aman-CERP/searchd/internal/tokenize"
)

var errUnregisteredTopLevelField = errors.New("indexpipeline: document references a field id with no registered name")

// preRegisterFields walks every old and new document in changes and
// registers every leaf field path it reaches, unfiltered by any
// attribute list. It runs single-threaded, before the extractors fan
// out concurrently, so that every concurrent fields.Insert call made
// inside tokenize.DocumentTokenizer during extraction hits an
// already-known name (a pure map read, never a write) instead of
// racing on the map's mutation path.
func preRegisterFields(fields *codec.FieldsIDMap, changes []DocumentChange) error {
	for _, ch := range changes {
		if err := registerDocumentFields(fields, ch.Old); err != nil {
			return err
		}
		if err := registerDocumentFields(fields, ch.New); err != nil {
			return err
		}
	}
	return nil
}

func registerDocumentFields(fields *codec.FieldsIDMap, raw []byte) error {
	if raw == nil {
		return nil
	}

	var walkErr error
	codec.NewKVReader(raw).Iter(func(fieldID codec.FieldID, fieldBytes []byte) bool {
		name, ok := fields.Name(fieldID)
		if !ok {
			// The top-level field id was minted by whatever produced
			// this KV block; it must already be registered.
			walkErr = errUnregisteredTopLevelField
			return false
		}

		dec := json.NewDecoder(bytes.NewReader(fieldBytes))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err != nil {
			walkErr = err
			return false
		}

		register := func(path string, _ any) { fields.Insert(path) }
		switch v := value.(type) {
		case map[string]any:
			tokenize.SeekLeafValues(v, nil, name, register)
		case []any:
			tokenize.SeekLeafValues(v, nil, name, register)
		default:
			register(name, value)
		}
		return true
	})
	return walkErr
}
