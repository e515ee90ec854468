package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

func TestDocumentID_Valid(t *testing.T) {
	for _, id := range []string{"1", "movie-42", "movie_42", "A1"} {
		require.NoError(t, DocumentID(id), id)
	}
}

func TestDocumentID_Empty(t *testing.T) {
	err := DocumentID("")
	require.Error(t, err)
	assert.Equal(t, engerrors.CodeMissingDocumentId, engerrors.GetCode(err))
}

func TestDocumentID_InvalidCharacters(t *testing.T) {
	err := DocumentID("movie/42")
	require.Error(t, err)
	assert.Equal(t, engerrors.CodeInvalidDocumentId, engerrors.GetCode(err))
}

func TestPrimaryKeyName_Valid(t *testing.T) {
	require.NoError(t, PrimaryKeyName("id"))
}

func TestPrimaryKeyName_Empty(t *testing.T) {
	err := PrimaryKeyName("")
	require.Error(t, err)
	assert.Equal(t, engerrors.CodeMissingPrimaryKey, engerrors.GetCode(err))
}
