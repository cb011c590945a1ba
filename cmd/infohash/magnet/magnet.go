package magnet

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/mcheviron/infohash/cmd/infohash/sha1"
)

const (
	scheme      = "magnet:?"
	topicPrefix = "urn:btih:"
)

// Link represents a parsed magnet link with its components
type Link struct {
	InfoHash [sha1.Size]byte
	Name     string
	Trackers []string
}

// New returns a link for the torrent identified by infoHash.
func New(infoHash [sha1.Size]byte, name string, trackers ...string) *Link {
	return &Link{
		InfoHash: infoHash,
		Name:     name,
		Trackers: trackers,
	}
}

// ExactTopic returns the xt parameter of the link.
func (l *Link) ExactTopic() string {
	return topicPrefix + hex.EncodeToString(l.InfoHash[:])
}

// String formats the link as a magnet URI. The exact topic comes first and
// is left unescaped, as most clients expect.
func (l *Link) String() string {
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("xt=")
	b.WriteString(l.ExactTopic())
	if l.Name != "" {
		b.WriteString("&dn=")
		b.WriteString(url.QueryEscape(l.Name))
	}
	for _, tr := range l.Trackers {
		b.WriteString("&tr=")
		b.WriteString(url.QueryEscape(tr))
	}
	return b.String()
}

// Parse parses a magnet URI and returns a Link object containing the extracted information.
// It validates and extracts the info hash, display name and tracker URLs.
// Returns an error if the URI format is invalid or required fields are missing/malformed.
func Parse(uri string) (*Link, error) {
	if !strings.HasPrefix(uri, scheme) {
		return nil, fmt.Errorf("invalid magnet URI format")
	}

	values, err := url.ParseQuery(uri[len(scheme):])
	if err != nil {
		return nil, fmt.Errorf("failed to parse magnet URI query: %w", err)
	}

	xt := values.Get("xt")
	if !strings.HasPrefix(xt, topicPrefix) {
		return nil, fmt.Errorf("invalid or missing urn:btih prefix in xt parameter")
	}

	encoded := strings.TrimPrefix(xt, topicPrefix)
	if len(encoded) != hex.EncodedLen(sha1.Size) {
		return nil, fmt.Errorf("invalid info hash length")
	}

	link := &Link{
		Name:     values.Get("dn"),
		Trackers: values["tr"],
	}
	if _, err := hex.Decode(link.InfoHash[:], []byte(encoded)); err != nil {
		return nil, fmt.Errorf("invalid hex-encoded info hash: %w", err)
	}
	return link, nil
}
