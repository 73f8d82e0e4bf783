// Package mdrange provides zero-copy byte-offset ranges into a shared source
// buffer, along with the small sum type used throughout the IR wherever a
// node needs to carry textual payload without owning it.
//
// It plays the role internal/scanio's ByteArena played in the teacher: a
// handle into a byte buffer that is cheap to copy and cheap to materialize,
// except that here the buffer (a Document's source) is immutable once built,
// so there is no arena write cursor or pruning to track.
package mdrange

import "unicode/utf8"

// Range is a half-open [Start,End) byte offset pair into some owning
// buffer. The zero Range is empty at offset 0.
type Range struct {
	Start int
	End   int
}

// New returns the Range [start,end). It does not validate start <= end;
// callers that build ranges from untrusted offsets should use Clamped.
func New(start, end int) Range {
	return Range{Start: start, End: end}
}

// IsEmpty reports whether the range contains no bytes.
func (r Range) IsEmpty() bool {
	return r.Start >= r.End
}

// Length returns the number of bytes spanned, never negative.
func (r Range) Length() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Clamped returns the intersection of r with [0,n), never trapping even if r
// is out of bounds or backwards.
func (r Range) Clamped(n int) Range {
	start, end := r.Start, r.End
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > n {
		start = n
	}
	if end < 0 {
		end = 0
	}
	if end < start {
		end = start
	}
	return Range{Start: start, End: end}
}

// Shift returns r translated by delta, used by the incremental engine to
// move transient ranges into the global buffer's coordinate space.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// String materializes the range's bytes from source as a string. Invalid
// UTF-8 is replaced byte-by-byte with the Unicode replacement character;
// callers must not assume the result round-trips to the original bytes.
func (r Range) String(source []byte) string {
	return decode(sliceClamped(source, r))
}

// Bytes returns the raw, possibly invalid-UTF-8, slice of source covered by
// r. The returned slice aliases source and must not be retained past
// source's lifetime.
func (r Range) Bytes(source []byte) []byte {
	return sliceClamped(source, r)
}

func sliceClamped(source []byte, r Range) []byte {
	c := r.Clamped(len(source))
	return source[c.Start:c.End]
}

// decode copies b to a string, substituting U+FFFD for any invalid UTF-8
// sequence it finds along the way. Valid input is a single string
// conversion; the slow path only runs once invalid bytes are seen.
func decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var buf []byte
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			buf = append(buf, "�"...)
			b = b[1:]
			continue
		}
		buf = append(buf, b[:size]...)
		b = b[size:]
	}
	return string(buf)
}

// Sequence is an ordered list of Ranges whose materialized strings
// concatenate, used for content reassembled from non-contiguous fragments
// (e.g. a fenced code block's text, which arrives as one tokenizer event per
// line).
type Sequence []Range

// String materializes and concatenates every range in the sequence, in
// order.
func (s Sequence) String(source []byte) string {
	if len(s) == 0 {
		return ""
	}
	if len(s) == 1 {
		return s[0].String(source)
	}
	var buf []byte
	for _, r := range s {
		buf = append(buf, decode(sliceClamped(source, r))...)
	}
	return string(buf)
}

// Shift returns a copy of s with every range shifted by delta.
func (s Sequence) Shift(delta int) Sequence {
	if len(s) == 0 {
		return nil
	}
	out := make(Sequence, len(s))
	for i, r := range s {
		out[i] = r.Shift(delta)
	}
	return out
}

// Content is the sum type stored wherever the IR needs textual payload: a
// single byte range, an owned string (used only for decoded entities and a
// handful of synthesized cases), or a sequence of ranges.
//
// Go has no native sum type, so Content is a sealed interface the way
// zombiezen-go-commonmark seals *Block/*Inline behind its Node type -- here
// via an unexported marker method instead of unsafe.Pointer packing, since
// none of these variants need pointer-sized identity.
type Content interface {
	// String materializes the content against source.
	String(source []byte) string
	isContent()
}

// Bytes wraps a single Range as Content.
type Bytes Range

func (b Bytes) String(source []byte) string { return Range(b).String(source) }
func (Bytes) isContent()                    {}

// Owned wraps an already-materialized string as Content. Used only for
// decoded entities and other values with no corresponding source range.
type Owned string

func (o Owned) String([]byte) string { return string(o) }
func (Owned) isContent()             {}

// Joined wraps a Sequence as Content.
type Joined Sequence

func (j Joined) String(source []byte) string { return Sequence(j).String(source) }
func (Joined) isContent()                    {}

// NullContent is the empty Bytes content, useful as a zero value for nodes
// that were never assigned any text.
func NullContent() Content { return Bytes{} }
