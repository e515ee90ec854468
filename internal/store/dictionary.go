package store

import (
	"go.etcd.io/bbolt"

	"github.com/Aman-CERP/searchd/internal/codec"
)

// LoadDictionary returns the index's trained compression dictionary, or
// a zero Dictionary{Trained: false} if none has been trained yet.
func (idx *Index) LoadDictionary() (codec.Dictionary, error) {
	var dict codec.Dictionary
	err := idx.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		trained := meta.Get([]byte(keyDictionaryTrained))
		if len(trained) != 1 || trained[0] == 0 {
			return nil
		}
		raw := meta.Get([]byte(keyDictionary))
		buf := make([]byte, len(raw))
		copy(buf, raw)
		dict = codec.Dictionary{Bytes: buf, Trained: true}
		return nil
	})
	return dict, err
}

// SaveDictionaryTx persists a newly trained dictionary. Must run inside
// the single writer transaction.
func SaveDictionaryTx(tx *bbolt.Tx, dict []byte) error {
	meta := tx.Bucket(bucketMeta)
	if err := meta.Put([]byte(keyDictionary), dict); err != nil {
		return err
	}
	return meta.Put([]byte(keyDictionaryTrained), []byte{1})
}

// TrainAndCompressTx is the only path that flips an index from
// untrained to trained. The trained/uncompressed switch is index-wide
// rather than per document, so every document written before this
// point — still sitting in the store as a plain, uncompressed KV block
// — must be rewritten against dict in the same transaction as
// SaveDictionaryTx, or later reads would try to LZ4-decompress bytes
// that were never compressed. Must run inside the single writer
// transaction.
func TrainAndCompressTx(tx *bbolt.Tx, dict []byte) error {
	docs := tx.Bucket(bucketDocuments)
	c := docs.Cursor()

	type rewrite struct {
		key     []byte
		encoded []byte
	}
	var pending []rewrite
	for k, v := c.First(); k != nil; k, v = c.Next() {
		kv := codec.NewCompressedReader(v).AsNonCompressed().Bytes()
		w, err := codec.NewCompressedWriterWithDictionary(kv, dict)
		if err != nil {
			return err
		}
		pending = append(pending, rewrite{key: append([]byte(nil), k...), encoded: w.Bytes()})
	}
	for _, r := range pending {
		if err := docs.Put(r.key, r.encoded); err != nil {
			return err
		}
	}

	return SaveDictionaryTx(tx, dict)
}

// DictionaryTrainingThreshold is the document count an untrained index
// must reach before it is considered for its first dictionary.
const DictionaryTrainingThreshold = 1000

// MaxDictionarySampleBytes caps the size of the preset dictionary built
// by BuildDictionarySample, matching LZ4's own documented upper bound
// for a useful preset dictionary.
const MaxDictionarySampleBytes = 64 * 1024

// BuildDictionarySample concatenates raw, uncompressed document bytes
// from across the index, in ascending id order, up to
// MaxDictionarySampleBytes, for use as an LZ4 preset dictionary. Unlike
// zstd, LZ4 has no statistical dictionary trainer: the library's own
// recommendation is a representative sample of the data to be
// compressed, used verbatim. Returns a nil slice if the index holds no
// documents yet.
func (idx *Index) BuildDictionarySample() ([]byte, error) {
	sample := make([]byte, 0, MaxDictionarySampleBytes)
	err := idx.Iter(func(entry IterEntry) bool {
		kv := entry.View.AsNonCompressed().Bytes()
		if len(sample)+len(kv) > MaxDictionarySampleBytes {
			room := MaxDictionarySampleBytes - len(sample)
			if room > 0 {
				sample = append(sample, kv[:room]...)
			}
			return false
		}
		sample = append(sample, kv...)
		return len(sample) < MaxDictionarySampleBytes
	})
	if err != nil {
		return nil, err
	}
	if len(sample) == 0 {
		return nil, nil
	}
	return sample, nil
}
