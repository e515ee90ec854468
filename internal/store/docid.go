package store

import (
	"encoding/binary"

	"go.etcd.io/bbolt"
)

// DocID is the internal, per-index monotonic document identifier
// documents are actually stored under.
type DocID uint32

func docIDKey(id DocID) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(id))
	return b[:]
}

func docIDFromKey(key []byte) DocID {
	return DocID(binary.BigEndian.Uint32(key))
}

// NextDocIDTx allocates and persists the next internal document id for
// this index, within an already-open write transaction. The indexing
// pipeline calls this once per new document in a short transaction
// committed before extraction, not inside its final commit.
func NextDocIDTx(tx *bbolt.Tx, uid string) (DocID, error) {
	meta := tx.Bucket(bucketMeta)
	var next uint32
	if raw := meta.Get([]byte(keyNextDocID)); raw != nil {
		next = binary.BigEndian.Uint32(raw)
	}

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], next+1)
	if err := meta.Put([]byte(keyNextDocID), buf[:]); err != nil {
		return 0, err
	}

	return DocID(next), nil
}

