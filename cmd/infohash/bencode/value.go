package bencode

import "strconv"

// Value is a decoded bencode element. The concrete types are String,
// Integer, List and Dict.
type Value interface {
	bencodeValue()
}

// String is a byte string. It may hold arbitrary binary data.
type String []byte

// Integer is a signed 64-bit integer.
type Integer int64

// List is an ordered sequence of values.
type List []Value

// Entry is a single key/value pair of a Dict.
type Entry struct {
	Key   String
	Value Value
}

// Dict keeps its pairs in the order they were parsed. Keys are not sorted
// and duplicates are kept.
type Dict []Entry

func (String) bencodeValue()  {}
func (Integer) bencodeValue() {}
func (List) bencodeValue()    {}
func (Dict) bencodeValue()    {}

// PrefixLen returns the number of digits in the string's length prefix.
func (s String) PrefixLen() int {
	return digits(int64(len(s)))
}

// Width returns the number of characters between 'i' and 'e', including the
// minus sign.
func (n Integer) Width() int {
	return digits(int64(n))
}

func digits(n int64) int {
	var buf [20]byte
	return len(strconv.AppendInt(buf[:0], n, 10))
}
