// Package sha1 implements the SHA-1 message digest.
package sha1

import (
	"encoding/binary"
	"errors"
	"hash"
	"math"
	"math/bits"
)

const (
	// Size is the digest length in bytes.
	Size = 20
	// BlockSize is the compression block length in bytes.
	BlockSize = 64

	lengthSize = 8
)

const (
	init0 = 0x67452301
	init1 = 0xEFCDAB89
	init2 = 0x98BADCFE
	init3 = 0x10325476
	init4 = 0xC3D2E1F0
)

const (
	k0 = 0x5A827999
	k1 = 0x6ED9EBA1
	k2 = 0x8F1BBCDC
	k3 = 0xCA62C1D6
)

// ErrMessageTooLarge is returned when the message length in bits does not
// fit the 64-bit length field, or the padded message cannot be addressed.
var ErrMessageTooLarge = errors.New("sha1: message too large")

// Sum returns the SHA-1 digest of msg.
func Sum(msg []byte) ([Size]byte, error) {
	padded, err := pad(msg)
	if err != nil {
		return [Size]byte{}, err
	}

	h := [5]uint32{init0, init1, init2, init3, init4}
	for i := 0; i < len(padded); i += BlockSize {
		block(&h, padded[i:i+BlockSize])
	}
	return serialize(h), nil
}

// paddedLen returns the length of msg after appending 0x80, zero fill and
// the 64-bit bit length.
func paddedLen(n int) (int, error) {
	if uint64(n) > math.MaxUint64/8 {
		return 0, ErrMessageTooLarge
	}
	// n+1 rounded up to 56 mod 64, plus the length field
	total := uint64(n) + 1 + lengthSize
	if rem := total % BlockSize; rem != 0 {
		total += BlockSize - rem
	}
	if total > math.MaxInt {
		return 0, ErrMessageTooLarge
	}
	return int(total), nil
}

func pad(msg []byte) ([]byte, error) {
	size, err := paddedLen(len(msg))
	if err != nil {
		return nil, err
	}

	padded := make([]byte, size)
	copy(padded, msg)
	padded[len(msg)] = 0x80
	binary.BigEndian.PutUint64(padded[size-lengthSize:], uint64(len(msg))<<3)
	return padded, nil
}

// block runs the 80-round compression function over one 64-byte block.
func block(h *[5]uint32, p []byte) {
	var w [80]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(p[i*4:])
	}
	for i := 16; i < 80; i++ {
		w[i] = bits.RotateLeft32(w[i-3]^w[i-8]^w[i-14]^w[i-16], 1)
	}

	a, b, c, d, e := h[0], h[1], h[2], h[3], h[4]
	for i := 0; i < 80; i++ {
		var f, k uint32
		switch {
		case i < 20:
			f = (b & c) | (^b & d)
			k = k0
		case i < 40:
			f = b ^ c ^ d
			k = k1
		case i < 60:
			f = (b & c) | (b & d) | (c & d)
			k = k2
		default:
			f = b ^ c ^ d
			k = k3
		}

		t := bits.RotateLeft32(a, 5) + f + e + k + w[i]
		a, b, c, d, e = t, a, bits.RotateLeft32(b, 30), c, d
	}

	h[0] += a
	h[1] += b
	h[2] += c
	h[3] += d
	h[4] += e
}

func serialize(h [5]uint32) [Size]byte {
	var digest [Size]byte
	for i, word := range h {
		binary.BigEndian.PutUint32(digest[i*4:], word)
	}
	return digest
}

// digest is the streaming form of Sum. It buffers at most one block.
type digest struct {
	h   [5]uint32
	x   [BlockSize]byte
	nx  int
	len uint64
}

// New returns a hash.Hash computing SHA-1. Its output equals Sum for the
// concatenation of everything written.
func New() hash.Hash {
	d := new(digest)
	d.Reset()
	return d
}

func (d *digest) Reset() {
	d.h = [5]uint32{init0, init1, init2, init3, init4}
	d.nx = 0
	d.len = 0
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (int, error) {
	n := len(p)
	d.len += uint64(n)

	if d.nx > 0 {
		c := copy(d.x[d.nx:], p)
		d.nx += c
		p = p[c:]
		if d.nx < BlockSize {
			return n, nil
		}
		block(&d.h, d.x[:])
		d.nx = 0
	}
	for len(p) >= BlockSize {
		block(&d.h, p[:BlockSize])
		p = p[BlockSize:]
	}
	d.nx = copy(d.x[:], p)
	return n, nil
}

// Sum appends the digest to b without changing the hash state.
func (d *digest) Sum(b []byte) []byte {
	c := *d

	var tail [BlockSize * 2]byte
	n := copy(tail[:], c.x[:c.nx])
	tail[n] = 0x80
	size := BlockSize
	if n+1 > BlockSize-lengthSize {
		size = 2 * BlockSize
	}
	binary.BigEndian.PutUint64(tail[size-lengthSize:size], c.len<<3)
	for i := 0; i < size; i += BlockSize {
		block(&c.h, tail[i:i+BlockSize])
	}

	sum := serialize(c.h)
	return append(b, sum[:]...)
}
