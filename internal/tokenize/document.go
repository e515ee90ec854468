package tokenize

import (
	"bytes"
	"encoding/json"

	"github.com/Aman-CERP/searchd/internal/codec"
)

// HardSeparatorJump is the additional relative proximity inserted
// between two words separated by a hard separator (sentence/clause
// boundary), so that a phrase match doesn't bridge two sentences.
const HardSeparatorJump = 8

// SoftSeparatorJump is the relative proximity between two ordinarily
// adjacent words.
const SoftSeparatorJump = 1

// DefaultMaxPositionsPerAttribute caps how many word positions a single
// attribute contributes, so one huge field can't dominate every phrase
// query's proximity math.
const DefaultMaxPositionsPerAttribute = 1000

// LocaleRule optionally restricts which locales' stemming/segmentation
// rules apply to a given attribute path, matching the locale-hinted
// tokenization feature documents can opt certain attributes into.
type LocaleRule struct {
	AttributePatterns []string
	Locales           []string
}

// Matches reports whether attribute is covered by this rule.
func (r LocaleRule) Matches(attribute string) bool {
	for _, pattern := range r.AttributePatterns {
		if ContainedIn(attribute, pattern) || pattern == attribute {
			return true
		}
	}
	return false
}

// TokenFunc receives one emitted (field, position, word) triple.
type TokenFunc func(field codec.FieldID, position uint16, word string)

// DocumentTokenizer walks one document's KV block field by field,
// restricts to the searchable attributes (when set), and emits word
// tokens at their proximity-adjusted positions (component C).
type DocumentTokenizer struct {
	Tokenizer                *Tokenizer
	SearchableAttributes     []string // nil means "all attributes"
	LocalizedAttributesRules []LocaleRule
	MaxPositionsPerAttribute uint32
}

// TokenizeDocument iterates every field of kv, walks its JSON leaves,
// and calls emit once per retained token.
func (dt *DocumentTokenizer) TokenizeDocument(kv *codec.KVReader, fields *codec.FieldsIDMap, emit TokenFunc) error {
	fieldPosition := make(map[codec.FieldID]uint16)

	var walkErr error
	kv.Iter(func(fieldID codec.FieldID, fieldBytes []byte) bool {
		fieldName, ok := fields.Name(fieldID)
		if !ok {
			return true
		}

		if !dt.fieldIsSearchable(fieldName) {
			return true
		}

		dec := json.NewDecoder(bytes.NewReader(fieldBytes))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err != nil {
			walkErr = err
			return false
		}

		tokenizeLeaf := func(path string, leaf any) {
			dt.tokenizeField(path, leaf, fields, fieldPosition, emit)
		}

		switch v := value.(type) {
		case map[string]any:
			SeekLeafValues(v, dt.SearchableAttributes, fieldName, tokenizeLeaf)
		case []any:
			SeekLeafValues(v, dt.SearchableAttributes, fieldName, tokenizeLeaf)
		default:
			tokenizeLeaf(fieldName, value)
		}
		return true
	})

	return walkErr
}

func (dt *DocumentTokenizer) fieldIsSearchable(fieldName string) bool {
	if dt.SearchableAttributes == nil {
		return true
	}
	for _, attr := range dt.SearchableAttributes {
		if ContainedIn(attr, fieldName) {
			return true
		}
	}
	return false
}

func (dt *DocumentTokenizer) tokenizeField(
	path string,
	value any,
	fields *codec.FieldsIDMap,
	fieldPosition map[codec.FieldID]uint16,
	emit TokenFunc,
) {
	fieldID := fields.Insert(path)

	position, seen := fieldPosition[fieldID]
	if seen {
		position += HardSeparatorJump
	} else {
		position = 0
	}
	fieldPosition[fieldID] = position

	maxPositions := dt.MaxPositionsPerAttribute
	if maxPositions == 0 {
		maxPositions = DefaultMaxPositionsPerAttribute
	}
	if uint32(position) >= maxPositions {
		return
	}

	switch v := value.(type) {
	case json.Number:
		emit(fieldID, position, v.String())
	case string:
		lastPos := dt.tokenizeString(path, v, position, maxPositions, fieldID, emit)
		fieldPosition[fieldID] = lastPos
	default:
		// bool, nil, and any other scalar kind: not indexed as text.
	}
}

func (dt *DocumentTokenizer) tokenizeString(
	path string,
	text string,
	startOffset uint16,
	maxPositions uint32,
	fieldID codec.FieldID,
	emit TokenFunc,
) uint16 {
	stem := dt.localeAllowsStemming(path)
	tokenizer := dt.Tokenizer
	if tokenizer == nil {
		tokenizer = New(stem)
	}

	raw := tokenizer.Tokenize(text)
	position := startOffset
	var prevKind Kind
	havePrev := false

	for _, tok := range raw {
		switch tok.kind {
		case KindWord, KindStopWord:
			if tok.lemma == "" {
				continue
			}
			if havePrev {
				if prevKind == KindHardSeparator {
					position += HardSeparatorJump
				} else {
					position += SoftSeparatorJump
				}
			}
			havePrev = true
			prevKind = tok.kind

			if uint32(position) >= maxPositions {
				return position
			}

			word := trimToMaxWordLength(tok.lemma)
			if word != "" {
				emit(fieldID, position, word)
			}
		case KindHardSeparator:
			havePrev = true
			prevKind = KindHardSeparator
		case KindSoftSeparator:
			if !havePrev || prevKind != KindHardSeparator {
				havePrev = true
				prevKind = KindSoftSeparator
			}
		}
	}

	return position
}

func (dt *DocumentTokenizer) localeAllowsStemming(path string) bool {
	for _, rule := range dt.LocalizedAttributesRules {
		if rule.Matches(path) {
			return len(rule.Locales) > 0
		}
	}
	return true
}

func trimToMaxWordLength(word string) string {
	trimmed := word
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t') {
		trimmed = trimmed[1:]
	}
	for len(trimmed) > 0 && (trimmed[len(trimmed)-1] == ' ' || trimmed[len(trimmed)-1] == '\t') {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if len(trimmed) > MaxWordLength {
		return ""
	}
	return trimmed
}
