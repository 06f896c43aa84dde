// Package stream provides a random-access, little-endian view over an
// immutable byte buffer. It is the only layer that touches raw bytes; it
// never interprets payload semantics.
package stream

import (
	"encoding/binary"
	"math"

	"github.com/joshuapare/cratekit/pkg/types"
)

// Reader is a seekable cursor over an in-memory buffer. Crate files are
// little-endian on disk; all fixed-width reads convert explicitly so the
// decoder behaves identically on big-endian hosts.
type Reader struct {
	buf []byte
	off int64
}

// New wraps buf. The reader never mutates or copies the buffer.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Size returns the total buffer length.
func (r *Reader) Size() int64 { return int64(len(r.buf)) }

// Tell returns the current read offset.
func (r *Reader) Tell() int64 { return r.off }

// SeekSet positions the cursor at offset. Offsets in [0, Size] are valid;
// Size itself is a legal position with zero readable bytes.
func (r *Reader) SeekSet(offset int64) error {
	if offset < 0 || offset > r.Size() {
		return &types.Error{Kind: types.ErrKindInvalidOffset, Offset: offset,
			Msg: "seek out of range", Err: types.ErrInvalidOffset}
	}
	r.off = offset
	return nil
}

// SeekFromCurrent moves the cursor by delta.
func (r *Reader) SeekFromCurrent(delta int64) error {
	return r.SeekSet(r.off + delta)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int64 { return r.Size() - r.off }

func (r *Reader) need(n int64) error {
	if r.Remaining() < n {
		return &types.Error{Kind: types.ErrKindEndOfStream, Offset: r.off,
			Msg: "unexpected end of stream", Err: types.ErrEndOfStream}
	}
	return nil
}

// Read copies up to nMax bytes into dst, requiring at least nRequested to
// remain. It returns the number of bytes copied.
func (r *Reader) Read(nRequested, nMax int64, dst []byte) (int64, error) {
	if err := r.need(nRequested); err != nil {
		return 0, err
	}
	n := nMax
	if rem := r.Remaining(); n > rem {
		n = rem
	}
	if n > int64(len(dst)) {
		n = int64(len(dst))
	}
	copy(dst, r.buf[r.off:r.off+n])
	r.off += n
	return n, nil
}

// ReadExact fills dst entirely or fails with EndOfStream.
func (r *Reader) ReadExact(dst []byte) error {
	n, err := r.Read(int64(len(dst)), int64(len(dst)), dst)
	if err != nil {
		return err
	}
	if n != int64(len(dst)) {
		return &types.Error{Kind: types.ErrKindEndOfStream, Offset: r.off,
			Msg: "short read", Err: types.ErrEndOfStream}
	}
	return nil
}

// Bytes returns a view of n bytes at the cursor and advances past them.
// The slice aliases the underlying buffer and must be treated as read-only.
func (r *Reader) Bytes(n int64) ([]byte, error) {
	if n < 0 {
		return nil, &types.Error{Kind: types.ErrKindInvalidOffset, Offset: r.off,
			Msg: "negative byte count", Err: types.ErrInvalidOffset}
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadI64 reads a little-endian int64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF32 reads a little-endian float32.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadF64 reads a little-endian float64.
func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	return math.Float64frombits(v), err
}
