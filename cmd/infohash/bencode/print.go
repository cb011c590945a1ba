package bencode

import (
	"fmt"
	"io"
	"strings"
)

const (
	printIndent = 4
	// strings at least this long are assumed to be binary
	blobThreshold = 100
)

// Fprint writes an indented, human readable tree of value to w.
func Fprint(w io.Writer, value Value) error {
	p := &printer{w: w}
	p.print(value, 0)
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(indent int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, strings.Repeat(" ", indent)+format, args...)
}

func (p *printer) print(value Value, indent int) {
	switch v := value.(type) {
	case String:
		if len(v) >= blobThreshold {
			p.printf(indent, "<blob>...</blob>\n")
		} else {
			p.printf(indent, "String: %d, %s\n", len(v), v)
		}
	case Integer:
		p.printf(indent, "Integer: %d\n", v)
	case List:
		p.printf(indent, "List:\n")
		for _, item := range v {
			p.print(item, indent+printIndent)
		}
	case Dict:
		p.printf(indent, "Dict:\n")
		for _, entry := range v {
			p.printf(indent+printIndent, "%s:\n", entry.Key)
			p.print(entry.Value, indent+2*printIndent)
		}
	}
}
