package protocol

import (
	"encoding/binary"
	"io"

	"github.com/zeebo/blake3"
)

// transcript accumulates every accepted transition of a game so players can
// check they all saw the same history by comparing digests.
type transcript struct {
	h *blake3.Hasher
}

const transcriptDomain = "gnark-mental-poker/transcript/v1"

func newTranscript() *transcript {
	h := blake3.New()
	_, _ = h.Write([]byte(transcriptDomain))
	return &transcript{h: h}
}

// append adds a labelled record. Every field is length prefixed so
// different records never hash the same.
func (t *transcript) append(label string, fields ...[]byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(label)))
	_, _ = t.h.Write(n[:])
	_, _ = t.h.Write([]byte(label))
	for _, f := range fields {
		binary.BigEndian.PutUint64(n[:], uint64(len(f)))
		_, _ = t.h.Write(n[:])
		_, _ = t.h.Write(f)
	}
}

// sum returns the digest of the records so far.
func (t *transcript) sum() [32]byte {
	var out [32]byte
	// reading a digest does not change the hasher state
	if _, err := io.ReadFull(t.h.Digest(), out[:]); err != nil {
		panic("transcript: internal hash failure: " + err.Error())
	}
	return out
}

// reader returns an unbounded stream derived from the records so far, used
// as public randomness.
func (t *transcript) reader(label string) io.Reader {
	h := t.h.Clone()
	_, _ = h.Write([]byte(label))
	return h.Digest()
}

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}
