package bencode

import "errors"

var (
	// ErrMalformedInput is wrapped by every grammar violation reported by
	// the decoder.
	ErrMalformedInput = errors.New("bencode: malformed input")

	ErrKeyNotFound = errors.New("bencode: key not found")
	ErrNotDict     = errors.New("bencode: value is not a dictionary")
	ErrNilValue    = errors.New("bencode: nil value")
)
