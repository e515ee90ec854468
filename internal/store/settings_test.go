package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func TestSettings_SaveLoadRoundTrip(t *testing.T) {
	idx := openTestIndex(t)

	empty, err := idx.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, Settings{}, empty)

	s := Settings{
		SearchableAttributes: []string{"title", "overview"},
		FilterableAttributes: []string{"genre", "year"},
		SortableAttributes:   []string{"year"},
		ExactAttributes:      []string{"title"},
		GeoAttribute:         "_geo",
		PrefixMinLength:      1,
		PrefixMaxLength:      4,
		PrimaryKey:           "id",
	}

	err = idx.Update(func(tx *bbolt.Tx) error {
		return SaveSettingsTx(tx, s)
	})
	require.NoError(t, err)

	loaded, err := idx.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}
