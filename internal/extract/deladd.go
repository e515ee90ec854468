// Package extract implements the extraction cache (component D): an
// LRU of per-key {del, add} roaring-bitmap pairs that amortizes
// repeated writes to the same key across a batch, spilling evictions
// to an external sorted merger.
package extract

import (
	"bytes"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// DelAddBitmaps is the value half of one cache entry: the set of
// document ids to remove from, and to add to, a given key's postings.
type DelAddBitmaps struct {
	Del *roaring.Bitmap
	Add *roaring.Bitmap
}

// InsertDel records n in Del, creating the bitmap if needed.
func (d *DelAddBitmaps) InsertDel(n uint32) {
	if d.Del == nil {
		d.Del = roaring.New()
	}
	d.Del.Add(n)
}

// InsertAdd records n in Add, creating the bitmap if needed.
func (d *DelAddBitmaps) InsertAdd(n uint32) {
	if d.Add == nil {
		d.Add = roaring.New()
	}
	d.Add.Add(n)
}

// Merge unions other's Del into this Del and other's Add into this
// Add, the behavior the external sorted merger applies across entries
// sharing a key (grenad's merge-function role in the source).
func (d *DelAddBitmaps) Merge(other *DelAddBitmaps) {
	if other.Del != nil {
		if d.Del == nil {
			d.Del = roaring.New()
		}
		d.Del.Or(other.Del)
	}
	if other.Add != nil {
		if d.Add == nil {
			d.Add = roaring.New()
		}
		d.Add.Or(other.Add)
	}
}

const (
	tagDeletion byte = 1
	tagAddition byte = 2
)

// Encode renders d as the two-branch Deletion/Addition block: a
// deletion bitmap followed by an addition bitmap, each length-prefixed.
func (d *DelAddBitmaps) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if d.Del != nil && !d.Del.IsEmpty() {
		if err := writeBlock(&buf, tagDeletion, d.Del); err != nil {
			return nil, err
		}
	}
	if d.Add != nil && !d.Add.IsEmpty() {
		if err := writeBlock(&buf, tagAddition, d.Add); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeBlock(buf *bytes.Buffer, tag byte, bm *roaring.Bitmap) error {
	raw, err := bm.ToBytes()
	if err != nil {
		return err
	}
	var lenPrefix [4]byte
	putUint32(lenPrefix[:], uint32(len(raw)))
	buf.WriteByte(tag)
	buf.Write(lenPrefix[:])
	buf.Write(raw)
	return nil
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// DecodeDelAdd parses the block Encode produces.
func DecodeDelAdd(raw []byte) (*DelAddBitmaps, error) {
	d := &DelAddBitmaps{}
	off := 0
	for off < len(raw) {
		if off+5 > len(raw) {
			return nil, fmt.Errorf("extract: truncated del/add block")
		}
		tag := raw[off]
		length := int(getUint32(raw[off+1 : off+5]))
		start := off + 5
		end := start + length
		if end > len(raw) {
			return nil, fmt.Errorf("extract: truncated del/add block body")
		}

		bm := roaring.New()
		if err := bm.UnmarshalBinary(raw[start:end]); err != nil {
			return nil, err
		}

		switch tag {
		case tagDeletion:
			d.Del = bm
		case tagAddition:
			d.Add = bm
		default:
			return nil, fmt.Errorf("extract: unknown del/add tag %d", tag)
		}
		off = end
	}
	return d, nil
}
