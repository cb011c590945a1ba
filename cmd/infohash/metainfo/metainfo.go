package metainfo

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mcheviron/infohash/cmd/infohash/bencode"
	"github.com/mcheviron/infohash/cmd/infohash/sha1"
	"go.uber.org/multierr"
)

const HashSize = sha1.Size

var ErrInvalid = errors.New("metainfo: invalid torrent")

var (
	infoKey   = []byte("info")
	lengthKey = []byte("length")
	filesKey  = []byte("files")
)

type Torrent struct {
	Announce     string     `mapstructure:"announce"`
	AnnounceList [][]string `mapstructure:"announce-list"`
	Comment      string     `mapstructure:"comment"`
	CreatedBy    string     `mapstructure:"created by"`
	CreationDate int64      `mapstructure:"creation date"`
	Info         Info       `mapstructure:"info"`

	InfoHash [HashSize]byte `mapstructure:"-"`
}

type Info struct {
	Name        string `mapstructure:"name"`
	Length      int64  `mapstructure:"length"`
	PieceLength int64  `mapstructure:"piece length"`
	Pieces      string `mapstructure:"pieces"`
	Private     int64  `mapstructure:"private"`
	Files       []File `mapstructure:"files"`
}

type File struct {
	Length int64    `mapstructure:"length"`
	Path   []string `mapstructure:"path"`
}

// InfoHash reads one bencoded document from r and hashes the exact bytes
// of its info dictionary.
func InfoHash(r io.ByteScanner) ([HashSize]byte, error) {
	root, err := bencode.Decode(r)
	if err != nil {
		return [HashSize]byte{}, err
	}

	info, err := bencode.Find(root, infoKey)
	if err != nil {
		return [HashSize]byte{}, err
	}
	return HashValue(info)
}

// HashValue re-encodes v and returns its SHA-1 digest.
func HashValue(v bencode.Value) ([HashSize]byte, error) {
	encoded, err := bencode.Encode(v)
	if err != nil {
		return [HashSize]byte{}, fmt.Errorf("failed to encode info: %w", err)
	}
	return sha1.Sum(encoded)
}

func ParseFile(path string) (*Torrent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a complete .torrent document.
func Parse(data []byte) (*Torrent, error) {
	root, err := bencode.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return FromValue(root)
}

// FromValue builds a Torrent from an already decoded document.
func FromValue(root bencode.Value) (*Torrent, error) {
	info, err := bencode.Find(root, infoKey)
	if err != nil {
		return nil, err
	}
	infoDict, ok := info.(bencode.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: info is not a dictionary", ErrInvalid)
	}

	hash, err := HashValue(infoDict)
	if err != nil {
		return nil, err
	}

	t := &Torrent{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: t,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(bencode.ToAny(root)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	t.InfoHash = hash

	if err := t.validate(infoDict); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return t, nil
}

func (t *Torrent) validate(info bencode.Dict) error {
	var err error

	if t.Info.Name == "" {
		err = multierr.Append(err, errors.New("missing name"))
	}
	if t.Info.PieceLength <= 0 {
		err = multierr.Append(err, fmt.Errorf("piece length %d is not positive", t.Info.PieceLength))
	}
	if len(t.Info.Pieces)%HashSize != 0 {
		err = multierr.Append(err, fmt.Errorf("pieces length %d is not a multiple of %d", len(t.Info.Pieces), HashSize))
	}

	_, hasLength := info.Get(lengthKey)
	_, hasFiles := info.Get(filesKey)
	if hasLength == hasFiles {
		err = multierr.Append(err, errors.New("exactly one of length or files is required"))
	}
	if hasLength && t.Info.Length < 0 {
		err = multierr.Append(err, fmt.Errorf("length %d is negative", t.Info.Length))
	}
	for i, f := range t.Info.Files {
		if f.Length < 0 {
			err = multierr.Append(err, fmt.Errorf("file %d: length %d is negative", i, f.Length))
		}
		if len(f.Path) == 0 {
			err = multierr.Append(err, fmt.Errorf("file %d: empty path", i))
		}
	}

	if err != nil {
		return err
	}

	total := t.TotalLength()
	if total < 0 {
		return fmt.Errorf("total length of files overflows %d bytes", int64(math.MaxInt64))
	}
	want := total / t.Info.PieceLength
	if total%t.Info.PieceLength != 0 {
		want++
	}
	if int64(t.NumPieces()) != want {
		return fmt.Errorf("%d piece hashes for %d bytes, want %d", t.NumPieces(), total, want)
	}
	return nil
}

func (t *Torrent) IsDirectory() bool {
	return len(t.Info.Files) > 0
}

// TotalLength is the sum of all file lengths, or -1 if the sum does not fit
// in an int64.
func (t *Torrent) TotalLength() int64 {
	if !t.IsDirectory() {
		return t.Info.Length
	}

	var length int64
	for _, f := range t.Info.Files {
		if f.Length > math.MaxInt64-length {
			return -1
		}
		length += f.Length
	}
	return length
}

// Trackers returns announce followed by the announce-list entries, without
// duplicates and in first-seen order.
func (t *Torrent) Trackers() []string {
	seen := make(map[string]struct{})
	var trackers []string
	add := func(tr string) {
		if tr == "" {
			return
		}
		if _, ok := seen[tr]; ok {
			return
		}
		seen[tr] = struct{}{}
		trackers = append(trackers, tr)
	}

	add(t.Announce)
	for _, tier := range t.AnnounceList {
		for _, tr := range tier {
			add(tr)
		}
	}
	return trackers
}

func (t *Torrent) NumPieces() int {
	return len(t.Info.Pieces) / HashSize
}

func (t *Torrent) PieceHashes() [][HashSize]byte {
	hashes := make([][HashSize]byte, t.NumPieces())
	for i := range hashes {
		copy(hashes[i][:], t.Info.Pieces[i*HashSize:(i+1)*HashSize])
	}
	return hashes
}

// PieceSize returns the size of piece index. Only the last piece may be
// shorter than the piece length.
func (t *Torrent) PieceSize(index int) int64 {
	numPieces := t.NumPieces()
	if index < 0 || index >= numPieces {
		return 0
	}

	if index == numPieces-1 {
		return t.TotalLength() - t.Info.PieceLength*int64(numPieces-1)
	}
	return t.Info.PieceLength
}
