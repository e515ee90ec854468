package store

import (
	"encoding/json"

	"go.etcd.io/bbolt"
)

const keySettings = "settings"

// Settings holds the index-level configuration that shapes indexing
// and search: which attributes are searchable, filterable, sortable,
// or indexed verbatim, and where the reserved geo field lives.
// Ranking rules, stop words, synonyms, and typo tolerance feed the
// search executor, which sits outside this package; this struct
// carries only the subset the indexing pipeline itself consumes.
type Settings struct {
	SearchableAttributes []string `json:"searchable_attributes,omitempty"`
	FilterableAttributes []string `json:"filterable_attributes,omitempty"`
	SortableAttributes   []string `json:"sortable_attributes,omitempty"`
	ExactAttributes      []string `json:"exact_attributes,omitempty"`
	GeoAttribute         string   `json:"geo_attribute,omitempty"`
	PrefixMinLength      int      `json:"prefix_min_length,omitempty"`
	PrefixMaxLength      int      `json:"prefix_max_length,omitempty"`
	PrimaryKey           string   `json:"primary_key,omitempty"`
}

// LoadSettings returns the index's current settings, or the zero value
// if none have been saved yet.
func (idx *Index) LoadSettings() (Settings, error) {
	var s Settings
	err := idx.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketMeta).Get([]byte(keySettings))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &s)
	})
	return s, err
}

// SaveSettingsTx persists a full settings replacement. Must run inside
// the single writer transaction the scheduler's batch loop already
// holds, since a settings update is always its own single-task batch.
func SaveSettingsTx(tx *bbolt.Tx, s Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketMeta).Put([]byte(keySettings), raw)
}
