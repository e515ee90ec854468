package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numberDoc decodes raw the same way store.Project does (json.Number
// for numerics), so EvalFilter's numeric-comparison path is exercised
// against the same value shapes it sees in production.
func numberDoc(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	require.NoError(t, dec.Decode(&doc))
	return doc
}

func TestEvalFilter_Equality(t *testing.T) {
	doc := numberDoc(t, `{"genre": "scifi", "year": 2010}`)

	expr, err := ParseFilter(`genre = scifi`)
	require.NoError(t, err)
	assert.True(t, EvalFilter(expr, doc))

	expr, err = ParseFilter(`genre = drama`)
	require.NoError(t, err)
	assert.False(t, EvalFilter(expr, doc))
}

func TestEvalFilter_NumericComparison(t *testing.T) {
	doc := numberDoc(t, `{"year": 2010}`)

	expr, err := ParseFilter(`year > 2000`)
	require.NoError(t, err)
	assert.True(t, EvalFilter(expr, doc))

	expr, err = ParseFilter(`year < 2000`)
	require.NoError(t, err)
	assert.False(t, EvalFilter(expr, doc))
}

func TestEvalFilter_ExistsAndNotExists(t *testing.T) {
	doc := numberDoc(t, `{"year": 2010}`)

	expr, err := ParseFilter(`year EXISTS`)
	require.NoError(t, err)
	assert.True(t, EvalFilter(expr, doc))

	expr, err = ParseFilter(`tagline EXISTS`)
	require.NoError(t, err)
	assert.False(t, EvalFilter(expr, doc))

	expr, err = ParseFilter(`tagline NOT EXISTS`)
	require.NoError(t, err)
	assert.True(t, EvalFilter(expr, doc))
}

func TestEvalFilter_InAndNotIn(t *testing.T) {
	doc := numberDoc(t, `{"genre": "scifi"}`)

	expr, err := ParseFilter(`genre IN [scifi, drama]`)
	require.NoError(t, err)
	assert.True(t, EvalFilter(expr, doc))

	expr, err = ParseFilter(`genre NOT IN [scifi, drama]`)
	require.NoError(t, err)
	assert.False(t, EvalFilter(expr, doc))
}

func TestEvalFilter_AndOr(t *testing.T) {
	doc := numberDoc(t, `{"genre": "scifi", "year": 2010}`)

	expr, err := ParseFilter(`genre = scifi AND year > 2000`)
	require.NoError(t, err)
	assert.True(t, EvalFilter(expr, doc))

	expr, err = ParseFilter(`genre = drama OR year > 2000`)
	require.NoError(t, err)
	assert.True(t, EvalFilter(expr, doc))
}

func TestEvalFilter_NilExprMatchesEverything(t *testing.T) {
	doc := numberDoc(t, `{"genre": "scifi"}`)
	assert.True(t, EvalFilter(nil, doc))
}
