package mdrange_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/mdcore/mdrange"
)

func TestRangeBasics(t *testing.T) {
	r := mdrange.New(2, 5)
	assert.False(t, r.IsEmpty())
	assert.Equal(t, 3, r.Length())

	empty := mdrange.New(5, 5)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 0, empty.Length())

	backwards := mdrange.New(5, 2)
	assert.True(t, backwards.IsEmpty())
	assert.Equal(t, 0, backwards.Length())
}

func TestRangeClampedNeverTraps(t *testing.T) {
	cases := []mdrange.Range{
		mdrange.New(-5, 3),
		mdrange.New(3, 100),
		mdrange.New(-10, -1),
		mdrange.New(100, 200),
	}
	for _, r := range cases {
		c := r.Clamped(10)
		assert.GreaterOrEqual(t, c.Start, 0)
		assert.LessOrEqual(t, c.End, 10)
		assert.GreaterOrEqual(t, c.End, c.Start)
	}
}

func TestRangeString(t *testing.T) {
	source := []byte("Hello, world!")
	r := mdrange.New(7, 12)
	assert.Equal(t, "world", r.String(source))
}

func TestRangeStringInvalidUTF8(t *testing.T) {
	source := []byte{'a', 0xff, 'b'}
	r := mdrange.New(0, 3)
	got := r.String(source)
	assert.Equal(t, "a�b", got)
}

func TestSequenceString(t *testing.T) {
	source := []byte("let x = 1\nlet y = 2\n")
	seq := mdrange.Sequence{
		mdrange.New(0, 10),
		mdrange.New(10, 20),
	}
	assert.Equal(t, "let x = 1\nlet y = 2\n", seq.String(source))
}

func TestSequenceShift(t *testing.T) {
	seq := mdrange.Sequence{mdrange.New(0, 3), mdrange.New(5, 8)}
	shifted := seq.Shift(100)
	assert.Equal(t, mdrange.New(100, 103), shifted[0])
	assert.Equal(t, mdrange.New(105, 108), shifted[1])
}

func TestContentVariants(t *testing.T) {
	source := []byte("abcdef")
	var c mdrange.Content

	c = mdrange.Bytes(mdrange.New(1, 3))
	assert.Equal(t, "bc", c.String(source))

	c = mdrange.Owned("decoded")
	assert.Equal(t, "decoded", c.String(source))

	c = mdrange.Joined(mdrange.Sequence{mdrange.New(0, 2), mdrange.New(4, 6)})
	assert.Equal(t, "abef", c.String(source))
}
