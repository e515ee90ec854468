package codec

// Dictionary holds the LZ4 dictionary trained for one index, plus
// whether training has happened at all. Before training, every document
// in the index is stored through the uncompressed fallback; the switch
// is index-wide, never per document.
type Dictionary struct {
	Bytes   []byte
	Trained bool
}

// EncodeDocument produces the bytes to persist for one document's KV
// block, choosing compression or the uncompressed fallback per dict.
func EncodeDocument(kv []byte, dict Dictionary) ([]byte, error) {
	if !dict.Trained {
		return NewUncompressedWriter(kv).Bytes(), nil
	}
	w, err := NewCompressedWriterWithDictionary(kv, dict.Bytes)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeDocument reads raw back into a KVReader, reusing scratch as
// decompression buffer space when dict.Trained.
func DecodeDocument(raw []byte, dict Dictionary, scratch *[]byte) (*KVReader, error) {
	r := NewCompressedReader(raw)
	if !dict.Trained {
		return r.AsNonCompressed(), nil
	}
	return r.DecompressWith(scratch, dict.Bytes)
}
