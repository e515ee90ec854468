// Package store implements the document store (component B): compressed
// documents keyed by an internal 32-bit document id, with external-id
// lookup and permissive-selector projection back to JSON.
//
// Each index owns one bbolt file holding the documents, the
// external-id map, the fields-ids map, and the trained compression
// dictionary, if any.
package store

import (
	"time"

	"go.etcd.io/bbolt"

	"github.com/Aman-CERP/searchd/internal/codec"
	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

var (
	bucketDocuments  = []byte("documents")
	bucketExternalID = []byte("external_ids")
	bucketFields     = []byte("fields")
	bucketMeta       = []byte("meta")
)

const keyDictionary = "dictionary"
const keyDictionaryTrained = "dictionary_trained"
const keyNextDocID = "next_doc_id"

// Index is one index_uid's isolated storage environment.
type Index struct {
	UID string
	db  *bbolt.DB
}

// Open opens (creating if absent) the bbolt environment at path for
// index uid, ensuring every bucket this package relies on exists.
func Open(uid, path string) (*Index, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, engerrors.New(engerrors.CodeInternal, "failed to open index environment", err).WithDetail("index_uid", uid)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketDocuments, bucketExternalID, bucketFields, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, engerrors.New(engerrors.CodeInternal, "failed to initialize index buckets", err).WithDetail("index_uid", uid)
	}

	return &Index{UID: uid, db: db}, nil
}

// Close releases the underlying environment.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Path returns the on-disk bbolt file path, used by the snapshot engine
// to perform a compacted, consistent copy.
func (idx *Index) Path() string {
	return idx.db.Path()
}

// Backup writes a consistent point-in-time copy of the entire
// environment to destPath, taken from inside a single read transaction
// so it reflects one atomic instant regardless of concurrent writers.
// The copy is raw (uncompacted); callers that want the
// free-page-reclaiming behavior run `bbolt.Compact` over the result
// afterwards.
func (idx *Index) Backup(destPath string) error {
	return idx.db.View(func(tx *bbolt.Tx) error {
		return tx.CopyFile(destPath, 0o600)
	})
}

// View runs fn against a read-only snapshot transaction.
func (idx *Index) View(fn func(*bbolt.Tx) error) error {
	return idx.db.View(fn)
}

// Update runs fn against the single writer transaction.
func (idx *Index) Update(fn func(*bbolt.Tx) error) error {
	return idx.db.Update(fn)
}
