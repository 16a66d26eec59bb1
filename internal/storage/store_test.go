package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/world"
)

func TestFileStoreRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecGzip, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "saves", "level.dat")
			s := NewFileStore(path, codec)

			data := make([]byte, 4096)
			for i := range data {
				data[i] = byte(i % 3)
			}
			require.NoError(t, s.Save(data))

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, data, got)

			// no temp files left behind
			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestFileStoreMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope.dat"), CodecGzip)
	_, err := s.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.dat")
	require.NoError(t, os.WriteFile(path, []byte("not compressed"), 0o644))
	_, err := NewFileStore(path, CodecGzip).Load()
	assert.Error(t, err)
}

func TestGzipLayoutIsPlainGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.dat")
	require.NoError(t, NewFileStore(path, CodecGzip).Save([]byte{1, 2, 3}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	buf := make([]byte, 8)
	n, _ := gz.Read(buf)
	assert.Equal(t, []byte{1, 2, 3}, buf[:n])
}

func TestParseCodec(t *testing.T) {
	c, err := ParseCodec("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, CodecZstd, c)
	c, err = ParseCodec("")
	require.NoError(t, err)
	assert.Equal(t, CodecGzip, c)
	_, err = ParseCodec("lz4")
	assert.Error(t, err)
}

func TestGridSaveLoadThroughFileStore(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "level.dat"), CodecGzip)
	g := world.New(16, 16, 16)
	g.SetBlock(3, 15, 3, world.BlockTypeRock)
	g.SetBlock(5, 2, 5, world.BlockTypeAir)
	require.NoError(t, g.Save(s))

	restored := world.New(16, 16, 16)
	require.NoError(t, restored.Load(s))
	assert.Equal(t, g.Bytes(), restored.Bytes())
}

func TestGridLoadMissingKeepsDefault(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "level.dat"), CodecGzip)
	g := world.New(8, 8, 8)
	want := g.Bytes()
	err := g.Load(s)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, want, g.Bytes())
}

func TestMemoryStore(t *testing.T) {
	m := &MemoryStore{Codec: CodecZstd}
	_, err := m.Load()
	assert.True(t, errors.Is(err, ErrNotFound))

	data := make([]byte, 1<<16)
	require.NoError(t, m.Save(data))
	assert.Less(t, m.Size(), len(data))
	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
