package indexpipeline

import (
	"github.com/RoaringBitmap/roaring/v2"
	"go.etcd.io/bbolt"

	"github.com/Aman-CERP/searchd/internal/extract"
)

var (
	bucketWordDocids         = []byte("word_docids")
	bucketWordPositionDocids = []byte("word_position_docids")
	bucketExactWordDocids    = []byte("exact_word_docids")
	bucketFacetStringDocids  = []byte("facet_string_docids")
	bucketFacetNumberDocids  = []byte("facet_number_docids")
	bucketPrefixDocids       = []byte("prefix_docids")
	bucketGeoPointsDocids    = []byte("geo_points_docids")

	// bucketMeta names the same "meta" bucket component B keeps its own
	// dictionary/next-id keys in; the pipeline only ever adds its own,
	// distinctly-named keys (metaKeyPrefixFST) to it.
	bucketMeta = []byte("meta")

	metaKeyPrefixFST = []byte("prefix_fst")
)

// mergeSortedRunTx drains sorter into bucketName, applying the
// del-subtract-then-add-union rule per key and deleting any key whose
// post-merge bitmap is empty.
func mergeSortedRunTx(tx *bbolt.Tx, bucketName []byte, sorter *extract.Sorter) error {
	bucket, err := tx.CreateBucketIfNotExists(bucketName)
	if err != nil {
		return err
	}

	for _, entry := range sorter.Drain() {
		key := []byte(entry.Key)

		existing := roaring.New()
		if raw := bucket.Get(key); raw != nil {
			if err := existing.UnmarshalBinary(raw); err != nil {
				return err
			}
		}

		if entry.Value.Del != nil {
			existing.AndNot(entry.Value.Del)
		}
		if entry.Value.Add != nil {
			existing.Or(entry.Value.Add)
		}

		if existing.IsEmpty() {
			if err := bucket.Delete(key); err != nil {
				return err
			}
			continue
		}

		raw, err := existing.ToBytes()
		if err != nil {
			return err
		}
		if err := bucket.Put(key, raw); err != nil {
			return err
		}
	}

	return nil
}
