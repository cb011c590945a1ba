package bencode

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

const (
	// MaxLookahead bounds the bytes scanned for a digit run and its
	// delimiter or terminator. At most MaxLookahead-1 bytes are read.
	MaxLookahead = 32
	// MaxStringSize is the largest string payload the decoder accepts.
	MaxStringSize = 100000
	// MaxDepth bounds how deeply lists and dictionaries may nest.
	MaxDepth = 512
)

const (
	dictStart  = 'd'
	listStart  = 'l'
	intStart   = 'i'
	delimiter  = ':'
	terminator = 'e'

	initialCapacity = 8
)

type decoder struct {
	r     io.ByteScanner
	off   int64
	depth int
}

// Decode reads exactly one element from r and leaves r positioned right
// after it. The source position is unspecified after an error.
//
// If r also implements io.Reader, string payloads are read in one call.
func Decode(r io.ByteScanner) (Value, error) {
	d := &decoder{r: r}
	return d.decodeAny()
}

// DecodeBytes decodes data, which must hold exactly one element.
func DecodeBytes(data []byte) (Value, error) {
	r := bytes.NewReader(data)
	d := &decoder{r: r}

	v, err := d.decodeAny()
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, d.errorf("%d trailing bytes after element", r.Len())
	}
	return v, nil
}

func (d *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrMalformedInput, d.off, fmt.Sprintf(format, args...))
}

func (d *decoder) readByte() (byte, error) {
	c, err := d.r.ReadByte()
	if err == io.EOF {
		return 0, d.errorf("unexpected end of input")
	}
	if err != nil {
		return 0, err
	}
	d.off++
	return c, nil
}

func (d *decoder) unreadByte() error {
	if err := d.r.UnreadByte(); err != nil {
		return err
	}
	d.off--
	return nil
}

func (d *decoder) peek() (byte, error) {
	c, err := d.readByte()
	if err != nil {
		return 0, err
	}
	return c, d.unreadByte()
}

func (d *decoder) expect(want byte) error {
	c, err := d.readByte()
	if err != nil {
		return err
	}
	if c != want {
		return d.errorf("expected %q, got %q", want, c)
	}
	return nil
}

// atTerminator consumes the next byte if it is the terminator.
func (d *decoder) atTerminator() (bool, error) {
	c, err := d.readByte()
	if err != nil {
		return false, err
	}
	if c == terminator {
		return true, nil
	}
	return false, d.unreadByte()
}

func (d *decoder) decodeAny() (Value, error) {
	c, err := d.peek()
	if err != nil {
		return nil, err
	}

	switch c {
	case dictStart:
		dict, err := d.decodeDict()
		if err != nil {
			return nil, err
		}
		return dict, nil
	case listStart:
		list, err := d.decodeList()
		if err != nil {
			return nil, err
		}
		return list, nil
	case intStart:
		n, err := d.decodeInteger()
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		s, err := d.decodeString()
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// enter marks the start of a list or dictionary; leave must follow.
func (d *decoder) enter() error {
	if d.depth >= MaxDepth {
		return d.errorf("nesting exceeds %d levels", MaxDepth)
	}
	d.depth++
	return nil
}

func (d *decoder) leave() {
	d.depth--
}

func (d *decoder) decodeDict() (Dict, error) {
	if err := d.expect(dictStart); err != nil {
		return nil, err
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	dict := make(Dict, 0, initialCapacity)
	for {
		done, err := d.atTerminator()
		if err != nil {
			return nil, err
		}
		if done {
			return dict, nil
		}

		key, err := d.decodeString()
		if err != nil {
			return nil, fmt.Errorf("invalid dictionary key: %w", err)
		}

		value, err := d.decodeAny()
		if err != nil {
			return nil, fmt.Errorf("invalid value for key %q: %w", key, err)
		}

		dict = append(dict, Entry{Key: key, Value: value})
	}
}

func (d *decoder) decodeList() (List, error) {
	if err := d.expect(listStart); err != nil {
		return nil, err
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer d.leave()

	list := make(List, 0, initialCapacity)
	for {
		done, err := d.atTerminator()
		if err != nil {
			return nil, err
		}
		if done {
			return list, nil
		}

		item, err := d.decodeAny()
		if err != nil {
			return nil, fmt.Errorf("invalid list item %d: %w", len(list), err)
		}
		list = append(list, item)
	}
}

func (d *decoder) decodeInteger() (Integer, error) {
	if err := d.expect(intStart); err != nil {
		return 0, err
	}

	run, err := d.readUntil(terminator)
	if err != nil {
		return 0, err
	}
	if err := d.checkDigits(run, true); err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(string(run), 10, 64)
	if err != nil {
		return 0, d.errorf("integer %s out of range", run)
	}
	return Integer(n), nil
}

func (d *decoder) decodeString() (String, error) {
	run, err := d.readUntil(delimiter)
	if err != nil {
		return nil, err
	}
	if err := d.checkDigits(run, false); err != nil {
		return nil, err
	}

	length, err := strconv.ParseInt(string(run), 10, 64)
	if err != nil || length > MaxStringSize {
		return nil, d.errorf("string length %s exceeds maximum of %d", run, MaxStringSize)
	}

	payload := make(String, length)
	if err := d.readFull(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// readUntil collects bytes up to stop, which is consumed but not returned.
func (d *decoder) readUntil(stop byte) ([]byte, error) {
	run := make([]byte, 0, MaxLookahead)
	for len(run) < MaxLookahead-1 {
		c, err := d.readByte()
		if err != nil {
			return nil, err
		}
		if c == stop {
			return run, nil
		}
		run = append(run, c)
	}
	return nil, d.errorf("no %q within %d bytes", stop, MaxLookahead-1)
}

// checkDigits accepts 1+ decimal digits with no leading zero unless the run
// is exactly "0". A leading '-' is allowed when signed, but never "-0".
func (d *decoder) checkDigits(run []byte, signed bool) error {
	body := run
	if signed && len(body) > 0 && body[0] == '-' {
		body = body[1:]
		if len(body) > 0 && body[0] == '0' {
			return d.errorf("negative zero or leading zero in %q", run)
		}
	}
	if len(body) == 0 {
		return d.errorf("empty digit run")
	}
	for _, c := range body {
		if c < '0' || c > '9' {
			return d.errorf("invalid digit %q in %q", c, run)
		}
	}
	if body[0] == '0' && len(body) > 1 {
		return d.errorf("leading zero in %q", run)
	}
	return nil
}

func (d *decoder) readFull(p []byte) error {
	if r, ok := d.r.(io.Reader); ok {
		n, err := io.ReadFull(r, p)
		d.off += int64(n)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return d.errorf("string payload truncated: want %d bytes, got %d", len(p), n)
		}
		return err
	}

	for i := range p {
		c, err := d.readByte()
		if err != nil {
			return err
		}
		p[i] = c
	}
	return nil
}
