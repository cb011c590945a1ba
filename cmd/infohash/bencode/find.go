package bencode

import (
	"bytes"
	"fmt"
)

// Get returns the value of the first entry whose key equals key.
func (d Dict) Get(key []byte) (Value, bool) {
	for _, entry := range d {
		if bytes.Equal(entry.Key, key) {
			return entry.Value, true
		}
	}
	return nil, false
}

// Find looks key up in dict. The result shares memory with dict.
func Find(dict Value, key []byte) (Value, error) {
	d, ok := dict.(Dict)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotDict, kind(dict))
	}

	v, ok := d.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return v, nil
}

func kind(v Value) string {
	switch v.(type) {
	case String:
		return "string"
	case Integer:
		return "integer"
	case List:
		return "list"
	case Dict:
		return "dictionary"
	default:
		return "nil"
	}
}
