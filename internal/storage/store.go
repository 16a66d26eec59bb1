package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("level not found")

// Codec selects the compression wrapped around the raw block dump.
type Codec int

const (
	// CodecGzip matches the classic level.dat layout: gzip over the raw bytes.
	CodecGzip Codec = iota
	CodecZstd
)

// ParseCodec maps "gzip" or "zstd" to a Codec.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gzip", "gz":
		return CodecGzip, nil
	case "zstd", "zst":
		return CodecZstd, nil
	}
	return CodecGzip, errors.Errorf("unknown compression %q", s)
}

func (c Codec) String() string {
	if c == CodecZstd {
		return "zstd"
	}
	return "gzip"
}

// FileStore keeps one compressed block dump on disk.
type FileStore struct {
	Path  string
	Codec Codec
}

// NewFileStore returns a store for path using codec.
func NewFileStore(path string, codec Codec) *FileStore {
	return &FileStore{Path: path, Codec: codec}
}

// Load reads and decompresses the dump.
func (s *FileStore) Load() ([]byte, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrNotFound, s.Path)
		}
		return nil, errors.Wrapf(err, "open %s", s.Path)
	}
	defer f.Close()

	data, err := decode(s.Codec, f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.Path)
	}
	return data, nil
}

// Save compresses data into a temporary file next to Path and renames it
// over the previous dump, so a crash mid-write leaves the old level intact.
func (s *FileStore) Save(data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encode(s.Codec, tmp, data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return errors.Wrapf(err, "rename to %s", s.Path)
	}
	return nil
}

func encode(codec Codec, w io.Writer, data []byte) error {
	switch codec {
	case CodecZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	default:
		gz := gzip.NewWriter(w)
		if _, err := gz.Write(data); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	}
}

func decode(codec Codec, r io.Reader) ([]byte, error) {
	switch codec {
	case CodecZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	default:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
}

// MemoryStore keeps the compressed dump in memory.
type MemoryStore struct {
	Codec Codec
	buf   []byte
}

// Load decompresses the last saved dump.
func (m *MemoryStore) Load() ([]byte, error) {
	if m.buf == nil {
		return nil, ErrNotFound
	}
	return decode(m.Codec, bytes.NewReader(m.buf))
}

// Save compresses data and keeps it.
func (m *MemoryStore) Save(data []byte) error {
	var b bytes.Buffer
	if err := encode(m.Codec, &b, data); err != nil {
		return err
	}
	m.buf = b.Bytes()
	return nil
}

// Size returns the compressed size of the stored dump.
func (m *MemoryStore) Size() int {
	return len(m.buf)
}
