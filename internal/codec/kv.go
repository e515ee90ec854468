// Package codec implements the compressed document codec (component A):
// an ordered field-id -> bytes representation ("KV" document), an LZ4
// block codec with a trained dictionary, and an uncompressed fallback
// used before a dictionary has been trained.
package codec

import (
	"encoding/binary"
	"fmt"
)

// FieldID identifies one attribute of a document by its position in the
// fields-ids map, not by name. Keeping documents keyed by a 16-bit id
// instead of their string name is what lets the store stay compact.
type FieldID = uint16

// KVWriter builds one document's KV block. Fields must be inserted in
// strictly increasing FieldID order; this mirrors obkv's writer
// discipline and lets KVReader's linear Get stop as soon as it passes
// the requested id.
type KVWriter struct {
	buf    []byte
	lastID FieldID
	any    bool
}

// NewKVWriter returns an empty writer.
func NewKVWriter() *KVWriter {
	return &KVWriter{}
}

// Insert appends one field. id must be strictly greater than the id of
// the previous Insert call.
func (w *KVWriter) Insert(id FieldID, value []byte) error {
	if w.any && id <= w.lastID {
		return fmt.Errorf("codec: field ids must be inserted in increasing order, got %d after %d", id, w.lastID)
	}
	var header [6]byte
	binary.LittleEndian.PutUint16(header[0:2], id)
	binary.LittleEndian.PutUint32(header[2:6], uint32(len(value)))
	w.buf = append(w.buf, header[:]...)
	w.buf = append(w.buf, value...)
	w.lastID = id
	w.any = true
	return nil
}

// Len reports the size in bytes of the block built so far.
func (w *KVWriter) Len() int {
	return len(w.buf)
}

// Bytes returns the finished, ready-to-store block.
func (w *KVWriter) Bytes() []byte {
	if w.buf == nil {
		return []byte{}
	}
	return w.buf
}

// KVReader reads the ordered field-id -> bytes block produced by
// KVWriter. Zero value operates on a nil/empty document.
type KVReader struct {
	buf []byte
}

// NewKVReader wraps buf for reading. buf is not copied.
func NewKVReader(buf []byte) *KVReader {
	return &KVReader{buf: buf}
}

const entryHeaderSize = 6

// Get returns the value stored under id, and whether it was present.
// Runs in O(n) over the entries; callers that need repeated lookups on
// the same document should use Iter and build their own index.
func (r *KVReader) Get(id FieldID) ([]byte, bool) {
	for off := 0; off < len(r.buf); {
		entryID, value, next, ok := r.readEntryAt(off)
		if !ok {
			return nil, false
		}
		if entryID == id {
			return value, true
		}
		if entryID > id {
			return nil, false
		}
		off = next
	}
	return nil, false
}

// Iter calls fn for every (id, value) pair in ascending id order. Stops
// early if fn returns false.
func (r *KVReader) Iter(fn func(id FieldID, value []byte) bool) {
	for off := 0; off < len(r.buf); {
		id, value, next, ok := r.readEntryAt(off)
		if !ok {
			return
		}
		if !fn(id, value) {
			return
		}
		off = next
	}
}

func (r *KVReader) readEntryAt(off int) (id FieldID, value []byte, next int, ok bool) {
	if off+entryHeaderSize > len(r.buf) {
		return 0, nil, 0, false
	}
	id = binary.LittleEndian.Uint16(r.buf[off : off+2])
	length := int(binary.LittleEndian.Uint32(r.buf[off+2 : off+6]))
	start := off + entryHeaderSize
	end := start + length
	if end > len(r.buf) {
		return 0, nil, 0, false
	}
	return id, r.buf[start:end], end, true
}

// Bytes returns the raw KV block backing r, the form DocumentChange.Old
// and DocumentChange.New expect.
func (r *KVReader) Bytes() []byte {
	return r.buf
}

// IsEmpty reports whether the block has no fields.
func (r *KVReader) IsEmpty() bool {
	return len(r.buf) == 0
}
