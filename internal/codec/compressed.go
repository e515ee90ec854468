package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// CompressedReader wraps the raw bytes stored under one document's key
// in the document store. The bytes are either an LZ4 block compressed
// against the index's trained dictionary — prefixed with the varint
// uncompressed length, since LZ4 blocks don't self-describe their
// output size — or, before a dictionary exists, a plain KVWriter block.
type CompressedReader struct {
	raw []byte
}

// NewCompressedReader wraps buf. buf is not copied.
func NewCompressedReader(buf []byte) *CompressedReader {
	return &CompressedReader{raw: buf}
}

// DecompressWith decompresses the block using dictionary, reusing buffer
// as scratch space to avoid an allocation per document. Returns
// CodeCorruptDocument if the block is truncated or otherwise invalid.
func (r *CompressedReader) DecompressWith(buffer *[]byte, dictionary []byte) (*KVReader, error) {
	originalLen, headerLen := binary.Uvarint(r.raw)
	if headerLen <= 0 {
		return nil, engerrors.New(engerrors.CodeCorruptDocument, "document block is missing its length prefix", nil)
	}
	block := r.raw[headerLen:]

	if cap(*buffer) < int(originalLen) {
		*buffer = make([]byte, originalLen)
	}
	*buffer = (*buffer)[:originalLen]

	n, err := lz4.UncompressBlockWithDict(block, *buffer, dictionary)
	if err != nil {
		return nil, engerrors.New(engerrors.CodeCorruptDocument, fmt.Sprintf("failed to decompress document: %v", err), err)
	}
	return NewKVReader((*buffer)[:n]), nil
}

// AsNonCompressed returns the block as-is, for the case where no
// dictionary has been trained yet and documents are stored raw.
func (r *CompressedReader) AsNonCompressed() *KVReader {
	return NewKVReader(r.raw)
}

// Bytes returns the raw, possibly-compressed bytes as stored.
func (r *CompressedReader) Bytes() []byte {
	return r.raw
}

// CompressedWriter produces the bytes to store for one document.
type CompressedWriter struct {
	raw []byte
}

// NewCompressedWriterWithDictionary compresses kv against dictionary.
// The caller must remember, at the index level, that this document was
// stored compressed — there is no per-document marker, matching how a
// dictionary's presence globally decides the encoding for the whole index.
func NewCompressedWriterWithDictionary(kv []byte, dictionary []byte) (*CompressedWriter, error) {
	if len(kv) == 0 {
		return &CompressedWriter{raw: []byte{}}, nil
	}

	var header [binary.MaxVarintLen64]byte
	headerLen := binary.PutUvarint(header[:], uint64(len(kv)))

	dst := make([]byte, headerLen+lz4.CompressBlockBound(len(kv)))
	copy(dst, header[:headerLen])

	var compressor lz4.Compressor
	compressor.Dict = dictionary
	n, err := compressor.CompressBlock(kv, dst[headerLen:])
	if err != nil {
		return nil, engerrors.New(engerrors.CodeInternal, fmt.Sprintf("failed to compress document: %v", err), err)
	}
	return &CompressedWriter{raw: dst[:headerLen+n]}, nil
}

// NewUncompressedWriter stores kv as-is, for use before a dictionary has
// been trained.
func NewUncompressedWriter(kv []byte) *CompressedWriter {
	return &CompressedWriter{raw: kv}
}

// Bytes returns the bytes to persist.
func (w *CompressedWriter) Bytes() []byte {
	return w.raw
}
