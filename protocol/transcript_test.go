package protocol

import (
	"io"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestTranscript(t *testing.T) {
	c := qt.New(t)
	a, b := newTranscript(), newTranscript()
	c.Assert(a.sum(), qt.Equals, b.sum())

	a.append("x", []byte("ab"), []byte("c"))
	b.append("x", []byte("a"), []byte("bc"))
	c.Assert(a.sum(), qt.Not(qt.Equals), b.sum())

	// reading the sum or a derived stream does not change the state
	before := a.sum()
	buf := make([]byte, 64)
	_, err := io.ReadFull(a.reader("encrypt"), buf)
	c.Assert(err, qt.IsNil)
	c.Assert(a.sum(), qt.Equals, before)

	other := make([]byte, 64)
	_, err = io.ReadFull(a.reader("encrypt"), other)
	c.Assert(err, qt.IsNil)
	c.Assert(other, qt.DeepEquals, buf)
	_, err = io.ReadFull(a.reader("other"), other)
	c.Assert(err, qt.IsNil)
	c.Assert(other, qt.Not(qt.DeepEquals), buf)
}
