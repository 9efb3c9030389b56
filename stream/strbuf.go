package stream

import (
	"fmt"

	"github.com/pkg/errors"
)

// StrBuf is an appendable, null-terminated UTF-8 buffer with printf-style
// formatting (C2). Like BinStream it has fixed and growable modes with the
// same capacity invariants; data[length] is always a null byte and is
// never counted in length.
type StrBuf struct {
	data     []byte
	length   int
	growable bool
}

// NewFixedStrBuf wraps a caller-owned byte slice. The slice must have room
// for at least one byte beyond any content written (the null terminator).
func NewFixedStrBuf(data []byte) *StrBuf {
	return &StrBuf{data: data}
}

// NewGrowableStrBuf creates an empty growable string buffer.
func NewGrowableStrBuf(initialCapacity int) *StrBuf {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &StrBuf{data: make([]byte, 1, initialCapacity), growable: true}
}

func (b *StrBuf) Len() int      { return b.length }
func (b *StrBuf) Cap() int      { return cap(b.data) }
func (b *StrBuf) Growable() bool { return b.growable }

// String returns the buffer's content as a Go string, excluding the null
// terminator.
func (b *StrBuf) String() string {
	return string(b.data[:b.length])
}

// Reset empties the buffer without deallocating.
func (b *StrBuf) Reset() {
	b.length = 0
	if len(b.data) > 0 {
		b.data[0] = 0
	}
}

// Append formats into a scratch string using fmt (the host's printf-
// compatible formatter covers %w/%Q/%q-style SQL escaping via ordinary Go
// verbs at call sites), then copies it in, growing if necessary. On a
// fixed buffer that would overflow, it copies the longest prefix that
// still leaves room for the null terminator and returns ErrOutOfMemory;
// it never truncates silently without reporting the failure.
func (b *StrBuf) Append(format string, args ...interface{}) error {
	s := fmt.Sprintf(format, args...)
	return b.appendRaw(s)
}

func (b *StrBuf) appendRaw(s string) error {
	need := b.length + len(s) + 1 // +1 for the null terminator
	if need > cap(b.data) {
		if !b.growable {
			room := cap(b.data) - b.length - 1
			if room < 0 {
				room = 0
			}
			if room > 0 {
				copy(b.data[b.length:b.length+room], s[:room])
				b.length += room
				b.data[b.length] = 0
			}
			return errors.WithStack(ErrOutOfMemory)
		}
		grown := int(float64(cap(b.data)) * 1.5)
		if grown < need {
			grown = need
		}
		nd := make([]byte, len(b.data), grown)
		copy(nd, b.data)
		b.data = nd
	}
	if need > len(b.data) {
		b.data = b.data[:need]
	}
	copy(b.data[b.length:b.length+len(s)], s)
	b.length += len(s)
	b.data[b.length] = 0
	return nil
}
