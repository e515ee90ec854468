package indexpipeline

import (
	"bytes"

	"github.com/blevesearch/vellum"
	"go.etcd.io/bbolt"
)

// buildPrefixFSTTx rebuilds the prefix-existence FST from the current
// contents of the prefix-docids bucket, giving O(log n) "does this
// prefix exist" checks instead of a per-prefix bucket scan.
//
// The FST's values are unused placeholders (0) since the authoritative
// postings live in bucketPrefixDocids; the FST only answers existence.
func buildPrefixFSTTx(tx *bbolt.Tx) error {
	bucket := tx.Bucket(bucketPrefixDocids)
	if bucket == nil {
		return nil
	}

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return err
	}

	c := bucket.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if err := builder.Insert(k, 0); err != nil {
			return err
		}
	}
	if err := builder.Close(); err != nil {
		return err
	}

	meta, err := tx.CreateBucketIfNotExists(bucketMeta)
	if err != nil {
		return err
	}
	return meta.Put(metaKeyPrefixFST, buf.Bytes())
}
