package stream

// ErrorStream holds a message count plus an accumulating string buffer
// (C3). Codec functions append to it on failure without aborting the
// caller; the SQL binding layer decides at the boundary whether to report
// the accumulated text or a generic status-keyed message (spec.md §7).
type ErrorStream struct {
	count int
	buf   *StrBuf
}

// NewErrorStream creates an empty, growable error stream.
func NewErrorStream() *ErrorStream {
	return &ErrorStream{buf: NewGrowableStrBuf(256)}
}

// Count returns the number of messages appended since the last Reset.
func (e *ErrorStream) Count() int { return e.count }

// Empty reports whether no message has been appended.
func (e *ErrorStream) Empty() bool { return e.count == 0 }

// String returns the accumulated messages.
func (e *ErrorStream) String() string {
	if e.buf == nil {
		return ""
	}
	return e.buf.String()
}

// Append increments the count, formats the message, appends it, then
// appends a trailing newline.
func (e *ErrorStream) Append(format string, args ...interface{}) error {
	e.count++
	if err := e.buf.Append(format, args...); err != nil {
		return err
	}
	return e.buf.appendRaw("\n")
}

// Reset zeros the count and empties the buffer without deallocating.
func (e *ErrorStream) Reset() {
	e.count = 0
	e.buf.Reset()
}
