package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/Aman-CERP/searchd/internal/codec"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	dir := t.TempDir()
	idx, err := Open("movies", filepath.Join(dir, "movies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIndex_PutGetRoundTrip(t *testing.T) {
	idx := openTestIndex(t)

	fields := codec.NewFieldsIDMap()
	titleID := fields.Insert("title")

	w := codec.NewKVWriter()
	require.NoError(t, w.Insert(titleID, []byte(`"Inception"`)))

	var id DocID
	err := idx.Update(func(tx *bbolt.Tx) error {
		var err error
		id, err = NextDocIDTx(tx, idx.UID)
		if err != nil {
			return err
		}
		if err := PersistNewFieldTx(tx, titleID, "title"); err != nil {
			return err
		}
		return PutTx(tx, id, w.Bytes(), codec.Dictionary{})
	})
	require.NoError(t, err)

	view, err := idx.Get(id)
	require.NoError(t, err)

	kv := view.AsNonCompressed()
	v, ok := kv.Get(titleID)
	require.True(t, ok)
	assert.Equal(t, `"Inception"`, string(v))
}

func TestIndex_GetMissingReturnsDocumentNotFound(t *testing.T) {
	idx := openTestIndex(t)

	_, err := idx.Get(DocID(999))
	require.Error(t, err)
}

func TestIndex_ExternalIDLookup(t *testing.T) {
	idx := openTestIndex(t)

	err := idx.Update(func(tx *bbolt.Tx) error {
		return PutExternalIDTx(tx, "movie-42", DocID(7))
	})
	require.NoError(t, err)

	id, found, err := idx.ExternalIDLookup("movie-42")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, DocID(7), id)

	_, found, err = idx.ExternalIDLookup("missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIndex_IterAscendingOrder(t *testing.T) {
	idx := openTestIndex(t)
	fields := codec.NewFieldsIDMap()
	titleID := fields.Insert("title")

	err := idx.Update(func(tx *bbolt.Tx) error {
		for i := 0; i < 3; i++ {
			w := codec.NewKVWriter()
			require.NoError(t, w.Insert(titleID, []byte(`"x"`)))
			id, err := NextDocIDTx(tx, idx.UID)
			require.NoError(t, err)
			if err := PutTx(tx, id, w.Bytes(), codec.Dictionary{}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var ids []DocID
	err = idx.Iter(func(e IterEntry) bool {
		ids = append(ids, e.ID)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []DocID{0, 1, 2}, ids)
}

func TestIndex_FieldsIDMapPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.db")

	idx, err := Open("movies", path)
	require.NoError(t, err)

	fields := codec.NewFieldsIDMap()
	titleID := fields.Insert("title")
	genreID := fields.Insert("genre")

	err = idx.Update(func(tx *bbolt.Tx) error {
		if err := PersistNewFieldTx(tx, titleID, "title"); err != nil {
			return err
		}
		return PersistNewFieldTx(tx, genreID, "genre")
	})
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened, err := Open("movies", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	loaded, err := reopened.LoadFieldsIDMap()
	require.NoError(t, err)

	id, ok := loaded.ID("title")
	require.True(t, ok)
	assert.Equal(t, titleID, id)

	id, ok = loaded.ID("genre")
	require.True(t, ok)
	assert.Equal(t, genreID, id)
}

func TestIndex_DictionaryRoundTrip(t *testing.T) {
	idx := openTestIndex(t)

	dict, err := idx.LoadDictionary()
	require.NoError(t, err)
	assert.False(t, dict.Trained)

	err = idx.Update(func(tx *bbolt.Tx) error {
		return SaveDictionaryTx(tx, []byte("trained dictionary bytes"))
	})
	require.NoError(t, err)

	dict, err = idx.LoadDictionary()
	require.NoError(t, err)
	assert.True(t, dict.Trained)
	assert.Equal(t, "trained dictionary bytes", string(dict.Bytes))
}

func TestIndex_TrainAndCompressTxRecompressesExistingDocuments(t *testing.T) {
	idx := openTestIndex(t)

	fields := codec.NewFieldsIDMap()
	titleID := fields.Insert("title")

	w := codec.NewKVWriter()
	require.NoError(t, w.Insert(titleID, []byte(`"Paprika"`)))
	kv := w.Bytes()

	untrained := codec.Dictionary{}
	err := idx.Update(func(tx *bbolt.Tx) error {
		return PutTx(tx, DocID(0), kv, untrained)
	})
	require.NoError(t, err)

	sample, err := idx.BuildDictionarySample()
	require.NoError(t, err)
	require.NotEmpty(t, sample)

	err = idx.Update(func(tx *bbolt.Tx) error {
		return TrainAndCompressTx(tx, sample)
	})
	require.NoError(t, err)

	dict, err := idx.LoadDictionary()
	require.NoError(t, err)
	require.True(t, dict.Trained)

	reader, err := idx.Get(DocID(0))
	require.NoError(t, err)

	var scratch []byte
	decoded, err := reader.DecompressWith(&scratch, dict.Bytes)
	require.NoError(t, err)
	value, ok := decoded.Get(titleID)
	require.True(t, ok)
	assert.Equal(t, `"Paprika"`, string(value))
}
