package store

import (
	"go.etcd.io/bbolt"
)

// PutExternalIDTx records the external-id -> internal-id mapping for a
// newly stored document. Must run inside the single writer transaction.
func PutExternalIDTx(tx *bbolt.Tx, externalID string, id DocID) error {
	return tx.Bucket(bucketExternalID).Put([]byte(externalID), docIDKey(id))
}

// DeleteExternalIDTx removes externalID's mapping.
func DeleteExternalIDTx(tx *bbolt.Tx, externalID string) error {
	return tx.Bucket(bucketExternalID).Delete([]byte(externalID))
}

// ExternalIDEntry is one (external id, internal id) pair yielded by
// IterExternalIDs.
type ExternalIDEntry struct {
	ExternalID string
	ID         DocID
}

// IterExternalIDs yields every external-id mapping, for callers (e.g.
// a document-clear task) that need the reverse of ExternalIDLookup.
func (idx *Index) IterExternalIDs(fn func(ExternalIDEntry) bool) error {
	return idx.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketExternalID).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			externalID := make([]byte, len(k))
			copy(externalID, k)
			if !fn(ExternalIDEntry{ExternalID: string(externalID), ID: docIDFromKey(v)}) {
				break
			}
		}
		return nil
	})
}

// ExternalIDLookup returns the internal id for externalID, if known.
func (idx *Index) ExternalIDLookup(externalID string) (DocID, bool, error) {
	var (
		id    DocID
		found bool
	)
	err := idx.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketExternalID).Get([]byte(externalID))
		if raw == nil {
			return nil
		}
		found = true
		id = docIDFromKey(raw)
		return nil
	})
	return id, found, err
}
