package scheduler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/Aman-CERP/searchd/internal/codec"
	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// PayloadFormat selects how ParsePayload reads raw bytes into
// documents.
type PayloadFormat int

const (
	FormatJSON PayloadFormat = iota
	FormatNDJSON
	FormatCSV
)

// ParsePayload decodes r into a sequence of documents, each a plain
// JSON object with numbers preserved as json.Number (never float64,
// so a large id doesn't round-trip through a lossy float).
func ParsePayload(r io.Reader, format PayloadFormat) ([]map[string]any, error) {
	switch format {
	case FormatJSON:
		return parseJSONArray(r)
	case FormatNDJSON:
		return parseNDJSON(r)
	case FormatCSV:
		return parseCSV(r)
	default:
		return nil, engerrors.New(engerrors.CodeInvalidContentType, "unsupported payload format", nil)
	}
}

func parseJSONArray(r io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, engerrors.New(engerrors.CodeMalformedPayload, "malformed JSON payload", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, engerrors.New(engerrors.CodeMalformedPayload, "JSON payload must be an array of objects", nil)
	}

	var docs []map[string]any
	for dec.More() {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			return nil, engerrors.New(engerrors.CodeMalformedPayload, "malformed document in JSON payload", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func parseNDJSON(r io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var docs []map[string]any
	for {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				break
			}
			return nil, engerrors.New(engerrors.CodeMalformedPayload, "malformed document in NDJSON payload", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// parseCSV reads a header row followed by one row per document,
// decoding every cell as a plain string. "field:type" header coercion
// (numbers/booleans inferred from the header) is not implemented here
// since nothing in this module reads a field's declared type back out
// (documented in DESIGN.md).
func parseCSV(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, engerrors.New(engerrors.CodeMalformedPayload, "malformed CSV header", err)
	}

	var docs []map[string]any
	for {
		row, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, engerrors.New(engerrors.CodeMalformedPayload, "malformed CSV row", err)
		}
		doc := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) {
				doc[col] = row[i]
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// documentToKV renders doc as a raw KV block, registering any new
// top-level attribute names into fields. KVWriter requires ascending
// field-id insertion order, so fields are assigned ids first and
// sorted before the block is built.
func documentToKV(doc map[string]any, fields *codec.FieldsIDMap) ([]byte, error) {
	type entry struct {
		id  codec.FieldID
		raw []byte
	}

	entries := make([]entry, 0, len(doc))
	for key, val := range doc {
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encoding field %q: %w", key, err)
		}
		entries = append(entries, entry{id: fields.Insert(key), raw: raw})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	w := codec.NewKVWriter()
	for _, e := range entries {
		if err := w.Insert(e.id, e.raw); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// externalIDOf extracts doc's primary key value as its external id
// string.
func externalIDOf(doc map[string]any, primaryKey string) (string, bool) {
	v, ok := doc[primaryKey]
	if !ok {
		return "", false
	}
	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		return id.String(), true
	default:
		return "", false
	}
}

// mergeDocuments overlays patch on top of a document decoded from an
// existing KV block, for DocumentAdditionOrUpdate tasks using
// MethodUpdate.
// Replace tasks skip this and use the submitted document verbatim.
func mergeDocuments(existing *codec.KVReader, fields *codec.FieldsIDMap, patch map[string]any) map[string]any {
	merged := make(map[string]any)
	existing.Iter(func(id codec.FieldID, raw []byte) bool {
		name, ok := fields.Name(id)
		if !ok {
			return true
		}
		var val any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&val); err == nil {
			merged[name] = val
		}
		return true
	})
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
