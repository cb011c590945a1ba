package bencode

import (
	"bufio"
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	jackpal "github.com/jackpal/bencode-go"
)

func TestDecodeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"4:spam", "spam", false},
		{"0:", "", false},
		{"5:hello", "hello", false},
		{"10:1234567890", "1234567890", false},
		{"3:\x00\xff\x01", "\x00\xff\x01", false},
		// Error cases
		{"4spam", "", true},    // No colon
		{"-1:spam", "", true},  // Negative length
		{"4:spa", "", true},    // Incomplete string
		{":spam", "", true},    // Empty length
		{"04:spam", "", true},  // Leading zero
		{"4x:spam", "", true},  // Non-digit
		{"", "", true},         // Empty input
		{strings.Repeat("1", MaxLookahead) + ":", "", true}, // No delimiter within budget
	}

	for _, tt := range tests {
		got, err := DecodeBytes([]byte(tt.input))

		if (err != nil) != tt.wantErr {
			t.Errorf("DecodeBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("DecodeBytes(%q) error = %v, want ErrMalformedInput", tt.input, err)
			}
			continue
		}

		if s, ok := got.(String); !ok || string(s) != tt.expected {
			t.Errorf("DecodeBytes(%q) = %#v, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDecodeStringMaxSize(t *testing.T) {
	payload := strings.Repeat("x", MaxStringSize)

	got, err := DecodeBytes([]byte("100000:" + payload))
	if err != nil {
		t.Fatalf("DecodeBytes(100000:...) error = %v", err)
	}
	if s, ok := got.(String); !ok || len(s) != MaxStringSize {
		t.Errorf("DecodeBytes(100000:...) returned %T of length %d", got, len(s))
	}

	_, err = DecodeBytes([]byte("100001:" + payload + "x"))
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("DecodeBytes(100001:...) error = %v, want ErrMalformedInput", err)
	}
}

func TestDecodeInteger(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"i3e", 3, false},
		{"i0e", 0, false},
		{"i-3e", -3, false},
		{"i123456789e", 123456789, false},
		{"i9223372036854775807e", 9223372036854775807, false},
		{"i-9223372036854775808e", -9223372036854775808, false},
		// Error cases
		{"i03e", 0, true},                  // Leading zero
		{"i00e", 0, true},                  // Leading zero
		{"i-0e", 0, true},                  // Negative zero
		{"i-03e", 0, true},                 // Negative leading zero
		{"ie", 0, true},                    // Empty integer
		{"i-e", 0, true},                   // Sign only
		{"i123", 0, true},                  // No end marker
		{"iabc123e", 0, true},              // Invalid characters
		{"i1-2e", 0, true},                 // Sign in the middle
		{"i9223372036854775808e", 0, true}, // Overflow
		{"i" + strings.Repeat("1", MaxLookahead) + "e", 0, true},
	}

	for _, tt := range tests {
		got, err := DecodeBytes([]byte(tt.input))

		if (err != nil) != tt.wantErr {
			t.Errorf("DecodeBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("DecodeBytes(%q) error = %v, want ErrMalformedInput", tt.input, err)
			}
			continue
		}

		if got != Integer(tt.expected) {
			t.Errorf("DecodeBytes(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDecodeLookaheadBoundary(t *testing.T) {
	// 30 characters before the terminator is the longest run accepted
	longest := "i-" + strings.Repeat("9", 29) + "e"
	_, err := DecodeBytes([]byte(longest))
	if errors.Is(err, ErrMalformedInput) && strings.Contains(err.Error(), "within") {
		t.Errorf("DecodeBytes(%q) hit the lookahead budget: %v", longest, err)
	}

	tooLong := "i-" + strings.Repeat("9", 30) + "e"
	_, err = DecodeBytes([]byte(tooLong))
	if err == nil || !strings.Contains(err.Error(), "within") {
		t.Errorf("DecodeBytes(%q) error = %v, want lookahead failure", tooLong, err)
	}
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
		wantErr  bool
	}{
		{"le", List{}, false},
		{"l4:spame", List{String("spam")}, false},
		{"l4:spam4:eggse", List{String("spam"), String("eggs")}, false},
		{"li3ei4ee", List{Integer(3), Integer(4)}, false},
		{"l4:spami3ee", List{String("spam"), Integer(3)}, false},
		// Nested list
		{"ll4:spamee", List{List{String("spam")}}, false},
		// Error cases
		{"l4:spam", nil, true},  // No end marker
		{"li03ee", nil, true},   // Bad child
		{"l4:spamx", nil, true}, // Garbage child
		// Nesting
		{strings.Repeat("l", MaxDepth) + strings.Repeat("e", MaxDepth), nestedLists(MaxDepth), false},
		{strings.Repeat("l", MaxDepth+1) + strings.Repeat("e", MaxDepth+1), nil, true},
		{strings.Repeat("l", 6000000), nil, true},
		{strings.Repeat("ld1:a", MaxDepth), nil, true},
	}

	for _, tt := range tests {
		got, err := DecodeBytes([]byte(tt.input))

		if (err != nil) != tt.wantErr {
			t.Errorf("DecodeBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr && got != nil {
			t.Errorf("DecodeBytes(%q) returned partial result %#v", tt.input, got)
		}

		if !tt.wantErr && !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("DecodeBytes(%q) = %#v, want %#v", tt.input, got, tt.expected)
		}
	}
}

func nestedLists(depth int) Value {
	v := List{}
	for i := 1; i < depth; i++ {
		v = List{v}
	}
	return v
}

func TestDecodeNestingLimit(t *testing.T) {
	input := strings.Repeat("l", MaxDepth+1) + strings.Repeat("e", MaxDepth+1)
	_, err := DecodeBytes([]byte(input))
	if !errors.Is(err, ErrMalformedInput) || !strings.Contains(err.Error(), "nesting exceeds") {
		t.Errorf("DecodeBytes(%d nested lists) error = %v, want nesting failure", MaxDepth+1, err)
	}

	// depth is released when a container closes, so siblings do not add up
	siblings := "l" + strings.Repeat(strings.Repeat("l", MaxDepth-1)+strings.Repeat("e", MaxDepth-1), 3) + "e"
	if _, err := DecodeBytes([]byte(siblings)); err != nil {
		t.Errorf("DecodeBytes(sibling lists) error = %v", err)
	}
}

func TestDecodeDict(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
		wantErr  bool
	}{
		{"de", Dict{}, false},
		{"d3:cow3:mooe", Dict{{String("cow"), String("moo")}}, false},
		{"d4:spam4:eggs3:cowi3ee", Dict{{String("spam"), String("eggs")}, {String("cow"), Integer(3)}}, false},
		// Nested dict
		{"d4:dictd3:cow3:mooee", Dict{{String("dict"), Dict{{String("cow"), String("moo")}}}}, false},
		// Dict with list
		{"d4:listl4:spam4:eggsee", Dict{{String("list"), List{String("spam"), String("eggs")}}}, false},
		// Error cases
		{"d4:spam", nil, true},      // No end marker
		{"di1ei2ee", nil, true},     // Integer key
		{"dl1:ae1:be", nil, true},   // List key
		{"d4:spame", nil, true},     // Key without value
		{"d3:cow3:moo", nil, true},  // Truncated after a pair
	}

	for _, tt := range tests {
		got, err := DecodeBytes([]byte(tt.input))

		if (err != nil) != tt.wantErr {
			t.Errorf("DecodeBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr && got != nil {
			t.Errorf("DecodeBytes(%q) returned partial result %#v", tt.input, got)
		}

		if !tt.wantErr && !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("DecodeBytes(%q) = %#v, want %#v", tt.input, got, tt.expected)
		}
	}
}

func TestDecodeDictKeepsOrderAndDuplicates(t *testing.T) {
	got, err := DecodeBytes([]byte("d3:one3:two3:six3:six3:onei1ee"))
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}

	want := Dict{
		{String("one"), String("two")},
		{String("six"), String("six")},
		{String("one"), Integer(1)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeBytes() = %#v, want %#v", got, want)
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	_, err := DecodeBytes([]byte("i1ei2e"))
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("DecodeBytes() error = %v, want ErrMalformedInput", err)
	}
}

func TestDecodeAdvancesSource(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("i42e4:spamle"))

	want := []Value{Integer(42), String("spam"), List{}}
	for _, w := range want {
		got, err := Decode(r)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !reflect.DeepEqual(got, w) {
			t.Errorf("Decode() = %#v, want %#v", got, w)
		}
	}

	if _, err := Decode(r); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("Decode() at end of input error = %v, want ErrMalformedInput", err)
	}
}

// byteSource hides the io.Reader of a bytes.Reader so the decoder has to
// fall back to single byte reads.
type byteSource struct {
	r *bytes.Reader
}

func (s byteSource) ReadByte() (byte, error) { return s.r.ReadByte() }
func (s byteSource) UnreadByte() error      { return s.r.UnreadByte() }

func TestDecodeByteScannerOnly(t *testing.T) {
	input := "d4:name5:hello6:piecesl3:abc0:ee"
	got, err := Decode(byteSource{bytes.NewReader([]byte(input))})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := Dict{
		{String("name"), String("hello")},
		{String("pieces"), List{String("abc"), String{}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() = %#v, want %#v", got, want)
	}

	if _, err := Decode(byteSource{bytes.NewReader([]byte("5:abc"))}); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("Decode(truncated) error = %v, want ErrMalformedInput", err)
	}
}

func TestDecodeErrorOffset(t *testing.T) {
	_, err := DecodeBytes([]byte("li1ei03ee"))
	if err == nil || !strings.Contains(err.Error(), "offset 8") {
		t.Errorf("DecodeBytes() error = %v, want offset 8", err)
	}
}

func TestDecodeMatchesJackpal(t *testing.T) {
	inputs := []string{
		"d8:announce35:http://tracker.example.com/announce4:infod6:lengthi12345e4:name8:test.txt12:piece lengthi16384e6:pieces20:abcdefghijklmnopqrstee",
		"l4:spami-42ed3:cowl3:moo3:baaee0:e",
		"d4:listli1ei2ei3ee4:nestd1:ad1:bd1:ci0eeeee",
	}

	for _, input := range inputs {
		got, err := DecodeBytes([]byte(input))
		if err != nil {
			t.Errorf("DecodeBytes(%q) error = %v", input, err)
			continue
		}

		want, err := jackpal.Decode(strings.NewReader(input))
		if err != nil {
			t.Fatalf("jackpal.Decode(%q) error = %v", input, err)
		}

		if !reflect.DeepEqual(ToAny(got), want) {
			t.Errorf("DecodeBytes(%q) = %#v, jackpal decoded %#v", input, ToAny(got), want)
		}
	}
}
