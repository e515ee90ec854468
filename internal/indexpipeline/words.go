package indexpipeline

import (
	"encoding/binary"

	"github.com/Aman-CERP/searchd/internal/codec"
	"github.com/Aman-CERP/searchd/internal/extract"
	"github.com/Aman-CERP/searchd/internal/tokenize"
)

// wordPositionKey packs word and position into one sortable byte
// string: words group together, and within a word, positions sort
// ascending within a word's group.
func wordPositionKey(word string, position uint16) string {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], position)
	return word + string(buf[:])
}

// wordExtraction runs the searchable-attribute tokenizer once per
// change and feeds the word-docids, word-position-docids, and
// prefix-docids caches from the single pass, avoiding tokenizing every
// document three times for three closely related tables.
func wordExtraction(dt *tokenize.DocumentTokenizer, fields *codec.FieldsIDMap, changes []resolvedChange, params Params) (words, positions, prefixes *extract.Sorter, err error) {
	capacity := params.cacheCapacity()
	minPrefix, maxPrefix := params.prefixRange()

	wordSorter := extract.NewSorter()
	wordCache, err := extract.NewCache(capacity, wordSorter)
	if err != nil {
		return nil, nil, nil, err
	}

	positionSorter := extract.NewSorter()
	positionCache, err := extract.NewCache(capacity, positionSorter)
	if err != nil {
		return nil, nil, nil, err
	}

	prefixSorter := extract.NewSorter()
	prefixCache, err := extract.NewCache(capacity, prefixSorter)
	if err != nil {
		return nil, nil, nil, err
	}

	emitPrefixes := func(word string, docID uint32, isAdd bool) {
		for n := minPrefix; n <= maxPrefix && n <= len(word); n++ {
			prefix := word[:n]
			if isAdd {
				prefixCache.InsertAdd(prefix, docID)
			} else {
				prefixCache.InsertDel(prefix, docID)
			}
		}
	}

	for _, ch := range changes {
		if ch.Old != nil {
			err := dt.TokenizeDocument(codec.NewKVReader(ch.Old), fields, func(_ codec.FieldID, position uint16, word string) {
				wordCache.InsertDel(word, uint32(ch.id))
				positionCache.InsertDel(wordPositionKey(word, position), uint32(ch.id))
				emitPrefixes(word, uint32(ch.id), false)
			})
			if err != nil {
				return nil, nil, nil, err
			}
		}
		if ch.New != nil {
			err := dt.TokenizeDocument(codec.NewKVReader(ch.New), fields, func(_ codec.FieldID, position uint16, word string) {
				wordCache.InsertAdd(word, uint32(ch.id))
				positionCache.InsertAdd(wordPositionKey(word, position), uint32(ch.id))
				emitPrefixes(word, uint32(ch.id), true)
			})
			if err != nil {
				return nil, nil, nil, err
			}
		}
	}

	return wordCache.Finish(), positionCache.Finish(), prefixCache.Finish(), nil
}

// exactWordExtraction indexes attributes in params.ExactAttributes
// with stemming disabled, so a query for the literal surface form can
// be matched without the recall-widening (and precision-narrowing)
// effect of stemming.
func exactWordExtraction(fields *codec.FieldsIDMap, changes []resolvedChange, params Params) (*extract.Sorter, error) {
	if len(params.ExactAttributes) == 0 {
		return extract.NewSorter(), nil
	}

	dt := &tokenize.DocumentTokenizer{
		Tokenizer:            tokenize.New(false),
		SearchableAttributes: params.ExactAttributes,
	}

	sorter := extract.NewSorter()
	cache, err := extract.NewCache(params.cacheCapacity(), sorter)
	if err != nil {
		return nil, err
	}

	for _, ch := range changes {
		if ch.Old != nil {
			err := dt.TokenizeDocument(codec.NewKVReader(ch.Old), fields, func(_ codec.FieldID, _ uint16, word string) {
				cache.InsertDel(word, uint32(ch.id))
			})
			if err != nil {
				return nil, err
			}
		}
		if ch.New != nil {
			err := dt.TokenizeDocument(codec.NewKVReader(ch.New), fields, func(_ codec.FieldID, _ uint16, word string) {
				cache.InsertAdd(word, uint32(ch.id))
			})
			if err != nil {
				return nil, err
			}
		}
	}

	return cache.Finish(), nil
}
