package bencode

import (
	"fmt"
	"strconv"
)

// Encode returns the bencoded form of value. Dictionaries are written in
// their stored order, so a tree produced by Decode encodes back to the exact
// bytes it was read from.
func Encode(value Value) ([]byte, error) {
	if err := validate(value); err != nil {
		return nil, err
	}

	size := EncodedLen(value)
	buf := make([]byte, size)
	if n := EncodeTo(buf, value); n != size {
		return nil, fmt.Errorf("bencode: wrote %d bytes, expected %d", n, size)
	}
	return buf, nil
}

// EncodedLen returns the exact number of bytes Encode produces for value.
func EncodedLen(value Value) int {
	switch v := value.(type) {
	case String:
		return v.PrefixLen() + 1 + len(v)
	case Integer:
		return v.Width() + 2
	case List:
		size := 2
		for _, item := range v {
			size += EncodedLen(item)
		}
		return size
	case Dict:
		size := 2
		for _, entry := range v {
			size += EncodedLen(entry.Key) + EncodedLen(entry.Value)
		}
		return size
	default:
		return 0
	}
}

// EncodeTo writes value into dst and returns the number of bytes written.
// It panics if dst is shorter than EncodedLen(value).
func EncodeTo(dst []byte, value Value) int {
	return encodeAt(dst, 0, value)
}

func encodeAt(dst []byte, off int, value Value) int {
	switch v := value.(type) {
	case String:
		off = putInt(dst, off, int64(len(v)), v.PrefixLen())
		dst[off] = delimiter
		off++
		off += copy(dst[off:off+len(v)], v)
	case Integer:
		dst[off] = intStart
		off = putInt(dst, off+1, int64(v), v.Width())
		dst[off] = terminator
		off++
	case List:
		dst[off] = listStart
		off++
		for _, item := range v {
			off = encodeAt(dst, off, item)
		}
		dst[off] = terminator
		off++
	case Dict:
		dst[off] = dictStart
		off++
		for _, entry := range v {
			off = encodeAt(dst, off, entry.Key)
			off = encodeAt(dst, off, entry.Value)
		}
		dst[off] = terminator
		off++
	default:
		panic(fmt.Sprintf("bencode: cannot encode %T", value))
	}
	return off
}

// putInt writes n in exactly width characters at dst[off:].
func putInt(dst []byte, off int, n int64, width int) int {
	field := dst[off : off+width : off+width]
	if len(strconv.AppendInt(field[:0], n, 10)) != width {
		panic(fmt.Sprintf("bencode: %d does not fit in %d characters", n, width))
	}
	return off + width
}

// validate rejects trees containing nil values, the only shape Encode
// cannot write.
func validate(value Value) error {
	switch v := value.(type) {
	case nil:
		return ErrNilValue
	case List:
		for i, item := range v {
			if err := validate(item); err != nil {
				return fmt.Errorf("list item %d: %w", i, err)
			}
		}
	case Dict:
		for _, entry := range v {
			if err := validate(entry.Value); err != nil {
				return fmt.Errorf("value for key %q: %w", entry.Key, err)
			}
		}
	}
	return nil
}
