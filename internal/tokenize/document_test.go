package tokenize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/searchd/internal/codec"
)

type emittedToken struct {
	field    codec.FieldID
	position uint16
}

func TestTokenizeDocument_PositionsAdvanceAcrossRepeatedFieldIDs(t *testing.T) {
	fields := codec.NewFieldsIDMap()

	w := codec.NewKVWriter()

	doggoID := fields.Insert("doggo")
	require.NoError(t, w.Insert(doggoID, []byte(`{"name":"doggo","age":10}`)))

	cattoID := fields.Insert("catto")
	require.NoError(t, w.Insert(cattoID, []byte(`{"catto":{"name":"pesti","age":23}}`)))

	arrayFieldID := fields.Insert("doggo.name")
	require.NoError(t, w.Insert(arrayFieldID, []byte(`["doggo","catto"]`)))

	// Pre-register the leaf paths in the same order the Rust original
	// test does, so field ids land on the same values being asserted.
	fields.Insert("doggo.age")
	fields.Insert("catto.catto.name")
	fields.Insert("catto.catto.age")

	dt := &DocumentTokenizer{
		Tokenizer:                New(false),
		MaxPositionsPerAttribute: 1000,
	}

	words := make(map[emittedToken]string)
	err := dt.TokenizeDocument(codec.NewKVReader(w.Bytes()), fields, func(field codec.FieldID, position uint16, word string) {
		words[emittedToken{field, position}] = word
	})
	require.NoError(t, err)

	doggoNameID, ok := fields.ID("doggo.name")
	require.True(t, ok)
	doggoAgeID, _ := fields.ID("doggo.age")
	cattoNameID, _ := fields.ID("catto.catto.name")
	cattoAgeID, _ := fields.ID("catto.catto.age")

	require.Equal(t, "doggo", words[emittedToken{doggoNameID, 0}])
	require.Equal(t, "doggo", words[emittedToken{doggoNameID, HardSeparatorJump}])
	require.Equal(t, "catto", words[emittedToken{doggoNameID, HardSeparatorJump * 2}])
	require.Equal(t, "10", words[emittedToken{doggoAgeID, 0}])
	require.Equal(t, "pesti", words[emittedToken{cattoNameID, 0}])
	require.Equal(t, "23", words[emittedToken{cattoAgeID, 0}])
}

func TestTokenizeDocument_SearchableAttributesFiltersFields(t *testing.T) {
	fields := codec.NewFieldsIDMap()
	w := codec.NewKVWriter()

	titleID := fields.Insert("title")
	require.NoError(t, w.Insert(titleID, []byte(`"Inception"`)))
	secretID := fields.Insert("internal_notes")
	require.NoError(t, w.Insert(secretID, []byte(`"do not index"`)))

	dt := &DocumentTokenizer{
		Tokenizer:                New(false),
		SearchableAttributes:     []string{"title"},
		MaxPositionsPerAttribute: 1000,
	}

	var seenFields []codec.FieldID
	err := dt.TokenizeDocument(codec.NewKVReader(w.Bytes()), fields, func(field codec.FieldID, position uint16, word string) {
		seenFields = append(seenFields, field)
	})
	require.NoError(t, err)

	for _, f := range seenFields {
		require.Equal(t, titleID, f)
	}
	require.NotEmpty(t, seenFields)
}

func TestTokenizeDocument_RespectsMaxPositionsPerAttribute(t *testing.T) {
	fields := codec.NewFieldsIDMap()
	w := codec.NewKVWriter()

	id := fields.Insert("body")
	require.NoError(t, w.Insert(id, []byte(`"one two three four five"`)))

	dt := &DocumentTokenizer{
		Tokenizer:                New(false),
		MaxPositionsPerAttribute: 2,
	}

	var count int
	err := dt.TokenizeDocument(codec.NewKVReader(w.Bytes()), fields, func(field codec.FieldID, position uint16, word string) {
		count++
	})
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
