package store

import (
	"encoding/binary"

	"go.etcd.io/bbolt"

	"github.com/Aman-CERP/searchd/internal/codec"
)

// LoadFieldsIDMap reconstructs the index's fields-ids map from the
// fields bucket, so a restart doesn't renumber attributes.
func (idx *Index) LoadFieldsIDMap() (*codec.FieldsIDMap, error) {
	m := codec.NewFieldsIDMap()
	err := idx.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketFields).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			m.ForceInsert(codec.FieldID(binary.BigEndian.Uint32(k)), string(v))
		}
		return nil
	})
	return m, err
}

// PersistNewFieldTx records a newly allocated (id, name) pair. Called
// by the indexing pipeline whenever FieldsIDMap.Insert mints a fresh id.
func PersistNewFieldTx(tx *bbolt.Tx, id codec.FieldID, name string) error {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], uint32(id))
	return tx.Bucket(bucketFields).Put(key[:], []byte(name))
}
