// Package stream implements the seekable binary buffer (C1), the growable
// string buffer (C2), and the error accumulator (C3) that the codec layers
// in wkb, wkt, and blob are built on top of.
package stream

import (
	"math"

	"github.com/pkg/errors"
)

// ByteOrder selects the endianness used by the fixed-width read/write
// operations. It defaults to little-endian, matching the WKB/blob wire
// formats' most common dialect.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// Sentinel errors returned by BinStream operations. Callers that want a
// message recorded for the SQL host should additionally append to an
// ErrorStream; these sentinels are for Go-level error handling.
var (
	ErrTruncated    = errors.New("stream: not enough bytes remaining")
	ErrOutOfRoom    = errors.New("stream: write exceeds fixed stream capacity")
	ErrSeekPastEnd  = errors.New("stream: seek past end of fixed stream")
	ErrNegativeSeek = errors.New("stream: relative seek before start of stream")
	ErrOutOfMemory  = errors.New("stream: allocation failure")
)

// BinStream is a seekable byte buffer with configurable endianness and two
// capacity modes: fixed (wraps a caller-owned slice, writes past capacity
// fail) and growable (owns a heap buffer that grows by 1.5x or to the
// exact need, whichever is larger).
//
// Invariant: 0 <= position <= length <= capacity. When fixed,
// length == capacity.
type BinStream struct {
	data     []byte
	length   int
	position int
	order    ByteOrder
	growable bool
}

// NewFixed wraps an externally owned byte slice as a read-oriented fixed
// stream. length == capacity == len(data).
func NewFixed(data []byte) *BinStream {
	return &BinStream{
		data:   data[:len(data):len(data)],
		length: len(data),
		order:  LittleEndian,
	}
}

// NewGrowable creates an empty growable stream with the given initial
// backing capacity.
func NewGrowable(initialCapacity int) *BinStream {
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	return &BinStream{
		data:     make([]byte, 0, initialCapacity),
		growable: true,
		order:    LittleEndian,
	}
}

func (s *BinStream) Order() ByteOrder        { return s.order }
func (s *BinStream) SetOrder(o ByteOrder)    { s.order = o }
func (s *BinStream) Position() int           { return s.position }
func (s *BinStream) Length() int             { return s.length }
func (s *BinStream) Capacity() int           { return cap(s.data) }
func (s *BinStream) Growable() bool          { return s.growable }
func (s *BinStream) Remaining() int          { return s.length - s.position }

// DataPointer returns a reference to data[position:length]. Callers must
// not retain it across a growing write, which may reallocate the backing
// array.
func (s *BinStream) DataPointer() []byte {
	return s.data[s.position:s.length]
}

// Bytes returns the entire written region, data[0:length].
func (s *BinStream) Bytes() []byte {
	return s.data[:s.length]
}

// Seek moves the read/write cursor to an absolute position. On a growable
// stream, seeking past length grows the buffer and advances length; on a
// fixed stream this fails.
func (s *BinStream) Seek(pos int) error {
	if pos < 0 {
		return errors.WithStack(ErrNegativeSeek)
	}
	if pos > s.length {
		if !s.growable {
			return errors.WithStack(ErrSeekPastEnd)
		}
		if err := s.ensure(pos); err != nil {
			return err
		}
		s.length = pos
	}
	s.position = pos
	return nil
}

// RelSeek moves the cursor by delta, which may be negative.
func (s *BinStream) RelSeek(delta int) error {
	return s.Seek(s.position + delta)
}

// Flip sets length = position and position = 0, handing off a completed
// write region to a reader.
func (s *BinStream) Flip() {
	s.length = s.position
	s.position = 0
}

// ensure grows the backing array so that it can hold at least need bytes,
// preserving existing content. Only valid on growable streams.
func (s *BinStream) ensure(need int) error {
	if need <= cap(s.data) {
		if need > len(s.data) {
			s.data = s.data[:need]
		}
		return nil
	}
	grown := int(float64(cap(s.data)) * 1.5)
	if grown < need {
		grown = need
	}
	nd := make([]byte, need, grown)
	copy(nd, s.data)
	s.data = nd
	return nil
}

func (s *BinStream) ensureWrite(n int) error {
	end := s.position + n
	if end > s.length {
		if !s.growable {
			return errors.WithStack(ErrOutOfRoom)
		}
		if err := s.ensure(end); err != nil {
			return err
		}
		s.length = end
	}
	return nil
}

func (s *BinStream) checkRead(n int) error {
	if s.position+n > s.length {
		return errors.WithStack(ErrTruncated)
	}
	return nil
}

// ReadU8 reads one byte.
func (s *BinStream) ReadU8() (uint8, error) {
	if err := s.checkRead(1); err != nil {
		return 0, err
	}
	v := s.data[s.position]
	s.position++
	return v, nil
}

// ReadNU8 reads n bytes verbatim (a bulk copy).
func (s *BinStream) ReadNU8(n int) ([]byte, error) {
	if err := s.checkRead(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, s.data[s.position:s.position+n])
	s.position += n
	return out, nil
}

func (s *BinStream) le() bool { return s.order == LittleEndian }

func putU32(b []byte, v uint32, le bool) {
	if le {
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
		b[3] = byte(v >> 24)
	} else {
		b[0] = byte(v >> 24)
		b[1] = byte(v >> 16)
		b[2] = byte(v >> 8)
		b[3] = byte(v)
	}
}

func getU32(b []byte, le bool) uint32 {
	if le {
		return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	}
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
}

func putU64(b []byte, v uint64, le bool) {
	if le {
		for i := 0; i < 8; i++ {
			b[i] = byte(v >> (8 * uint(i)))
		}
	} else {
		for i := 0; i < 8; i++ {
			b[7-i] = byte(v >> (8 * uint(i)))
		}
	}
}

func getU64(b []byte, le bool) uint64 {
	var v uint64
	if le {
		for i := 0; i < 8; i++ {
			v |= uint64(b[i]) << (8 * uint(i))
		}
	} else {
		for i := 0; i < 8; i++ {
			v |= uint64(b[7-i]) << (8 * uint(i))
		}
	}
	return v
}

// ReadU32 reads a 32-bit unsigned integer at the stream's endianness.
func (s *BinStream) ReadU32() (uint32, error) {
	if err := s.checkRead(4); err != nil {
		return 0, err
	}
	v := getU32(s.data[s.position:s.position+4], s.le())
	s.position += 4
	return v, nil
}

// ReadI32 reads a 32-bit signed integer.
func (s *BinStream) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

// ReadU64 reads a 64-bit unsigned integer.
func (s *BinStream) ReadU64() (uint64, error) {
	if err := s.checkRead(8); err != nil {
		return 0, err
	}
	v := getU64(s.data[s.position:s.position+8], s.le())
	s.position += 8
	return v, nil
}

// ReadDouble reads an IEEE-754 double: the 64-bit pattern is read at the
// stream's endianness and reinterpreted as a float64.
func (s *BinStream) ReadDouble() (float64, error) {
	bits, err := s.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// WriteU8 writes one byte, growing the buffer if needed and possible.
func (s *BinStream) WriteU8(v uint8) error {
	if err := s.ensureWrite(1); err != nil {
		return err
	}
	s.data[s.position] = v
	s.position++
	return nil
}

// WriteNU8 writes bytes verbatim.
func (s *BinStream) WriteNU8(b []byte) error {
	if err := s.ensureWrite(len(b)); err != nil {
		return err
	}
	copy(s.data[s.position:s.position+len(b)], b)
	s.position += len(b)
	return nil
}

// WriteU32 writes a 32-bit unsigned integer at the stream's endianness.
func (s *BinStream) WriteU32(v uint32) error {
	if err := s.ensureWrite(4); err != nil {
		return err
	}
	putU32(s.data[s.position:s.position+4], v, s.le())
	s.position += 4
	return nil
}

// WriteI32 writes a 32-bit signed integer.
func (s *BinStream) WriteI32(v int32) error {
	return s.WriteU32(uint32(v))
}

// WriteU64 writes a 64-bit unsigned integer.
func (s *BinStream) WriteU64(v uint64) error {
	if err := s.ensureWrite(8); err != nil {
		return err
	}
	putU64(s.data[s.position:s.position+8], v, s.le())
	s.position += 8
	return nil
}

// WriteDouble writes an IEEE-754 double: the float64 bit pattern is
// written as a 64-bit integer at the stream's endianness.
func (s *BinStream) WriteDouble(v float64) error {
	return s.WriteU64(math.Float64bits(v))
}
