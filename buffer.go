package x86

import (
	"encoding/binary"
)

// buffer accumulates encoded bytes. All multi-byte values are little-endian.
type buffer struct {
	b  []byte
	i  int
	sz int
}

func (b *buffer) extend(length int) {
	if len(b.b)-b.i >= length {
		return
	}
	n := len(b.b) * 2
	if n < b.i+length {
		n = b.i + length
	}
	bb := make([]byte, n)
	copy(bb, b.b[:b.i])
	b.b = bb
}

func (b *buffer) Len() int    { return b.i }
func (b *buffer) Get() []byte { return b.b[:b.i] }

func (b *buffer) Reset() {
	if len(b.b) != b.sz {
		b.b = make([]byte, b.sz)
	}
	b.i = 0
}

func (b *buffer) Byte(v byte) {
	b.extend(1)
	b.b[b.i] = v
	b.i++
}

func (b *buffer) Bytes(v []byte) {
	b.extend(len(v))
	copy(b.b[b.i:], v)
	b.i += len(v)
}

func (b *buffer) Int8(v int8) {
	b.Byte(byte(v))
}

func (b *buffer) Int32(v int32) {
	b.extend(4)
	binary.LittleEndian.PutUint32(b.b[b.i:], uint32(v))
	b.i += 4
}

func (b *buffer) Int64(v int64) {
	b.extend(8)
	binary.LittleEndian.PutUint64(b.b[b.i:], uint64(v))
	b.i += 8
}
