package store

import (
	"go.etcd.io/bbolt"

	"github.com/Aman-CERP/searchd/internal/codec"
	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// PutTx writes the raw (uncompressed) KV bytes for id, compressing
// against the index's current dictionary if one has been trained.
// Must run inside the single writer transaction.
func PutTx(tx *bbolt.Tx, id DocID, rawKV []byte, dict codec.Dictionary) error {
	encoded, err := codec.EncodeDocument(rawKV, dict)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketDocuments).Put(docIDKey(id), encoded)
}

// Get returns a compressed view over id's stored bytes; the caller
// decompresses into its own scratch buffer.
func (idx *Index) Get(id DocID) (*codec.CompressedReader, error) {
	var reader *codec.CompressedReader
	err := idx.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketDocuments).Get(docIDKey(id))
		if raw == nil {
			return engerrors.New(engerrors.CodeDocumentNotFound, "document not found", nil).WithDetail("index_uid", idx.UID)
		}
		// Copy out of the transaction's mmap'd memory: raw is only
		// valid for the lifetime of tx.
		buf := make([]byte, len(raw))
		copy(buf, raw)
		reader = codec.NewCompressedReader(buf)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// DeleteTx removes id's stored document. Must run inside the single
// writer transaction.
func DeleteTx(tx *bbolt.Tx, id DocID) error {
	return tx.Bucket(bucketDocuments).Delete(docIDKey(id))
}

// IterEntry is one (id, compressed view) pair yielded by Iter.
type IterEntry struct {
	ID   DocID
	View *codec.CompressedReader
}

// Iter yields every stored document in ascending internal-id order.
// fn's returned bool controls early stop.
func (idx *Index) Iter(fn func(IterEntry) bool) error {
	return idx.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketDocuments).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			buf := make([]byte, len(v))
			copy(buf, v)
			if !fn(IterEntry{ID: docIDFromKey(k), View: codec.NewCompressedReader(buf)}) {
				break
			}
		}
		return nil
	})
}

// IterIDs yields every stored document matching ids, in the ascending
// order ids were given sorted by the caller.
func (idx *Index) IterIDs(ids []DocID, fn func(IterEntry) bool) error {
	return idx.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDocuments)
		for _, id := range ids {
			v := bucket.Get(docIDKey(id))
			if v == nil {
				continue
			}
			buf := make([]byte, len(v))
			copy(buf, v)
			if !fn(IterEntry{ID: id, View: codec.NewCompressedReader(buf)}) {
				break
			}
		}
		return nil
	})
}

// Count returns the number of stored documents.
func (idx *Index) Count() (int, error) {
	var n int
	err := idx.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketDocuments).Stats().KeyN
		return nil
	})
	return n, err
}
