package model

import "errors"

// ErrCapacity is returned when a fixed-size constructor is given a
// non-positive buffer capacity.
var ErrCapacity = errors.New("model: fixed capacity must be positive")

// MutableText is a string field with a construction-time growth policy.
// The dynamic variant grows to hold whatever is written. The fixed variant
// never grows: writes that exceed the remaining capacity are silently
// truncated, which is the capacity contract for scratch objects reused
// across decode calls.
type MutableText interface {
	// Set replaces the content, truncating in the fixed variant.
	Set(s string)

	// Append appends s, preceded by sep when the buffer is non-empty.
	// Appending an empty string is a no-op.
	Append(sep, s string)

	// String returns the current content.
	String() string

	// Len returns the current content length in bytes.
	Len() int

	// Cap returns the fixed capacity in bytes, or 0 for the dynamic
	// variant. A fixed buffer of capacity n holds at most n-1 content
	// bytes; the last byte is reserved for the terminator expected by
	// C-style consumers of the rendered field.
	Cap() int

	// Reset truncates the content to empty, preserving capacity.
	Reset()
}

// NewDynamicText returns a growable text buffer.
func NewDynamicText() MutableText {
	return &dynamicText{}
}

// NewFixedText returns a truncating text buffer of the given capacity.
func NewFixedText(capacity int) (MutableText, error) {
	if capacity <= 0 {
		return nil, ErrCapacity
	}
	return &fixedText{buf: make([]byte, 0, capacity-1), max: capacity - 1}, nil
}

type dynamicText struct {
	s string
}

func (t *dynamicText) Set(s string) { t.s = s }

func (t *dynamicText) Append(sep, s string) {
	if s == "" {
		return
	}
	if t.s == "" {
		t.s = s
		return
	}
	t.s += sep + s
}

func (t *dynamicText) String() string { return t.s }
func (t *dynamicText) Len() int       { return len(t.s) }
func (t *dynamicText) Cap() int       { return 0 }
func (t *dynamicText) Reset()         { t.s = "" }

type fixedText struct {
	buf []byte
	max int
}

func (t *fixedText) Set(s string) {
	if len(s) > t.max {
		s = s[:t.max]
	}
	t.buf = append(t.buf[:0], s...)
}

func (t *fixedText) Append(sep, s string) {
	if s == "" {
		return
	}
	if len(t.buf) > 0 {
		t.appendTrunc(sep)
	}
	t.appendTrunc(s)
}

func (t *fixedText) appendTrunc(s string) {
	room := t.max - len(t.buf)
	if room <= 0 {
		return
	}
	if len(s) > room {
		s = s[:room]
	}
	t.buf = append(t.buf, s...)
}

func (t *fixedText) String() string { return string(t.buf) }
func (t *fixedText) Len() int       { return len(t.buf) }
func (t *fixedText) Cap() int       { return t.max + 1 }
func (t *fixedText) Reset()         { t.buf = t.buf[:0] }
