package world

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data []byte
	err  error
}

func (m *memStore) Load() ([]byte, error) { return m.data, m.err }
func (m *memStore) Save(data []byte) error {
	m.data = append([]byte(nil), data...)
	return m.err
}

func TestNewFillsDefaultTerrain(t *testing.T) {
	g := New(8, 8, 12)
	surface := g.SurfaceLevel()
	assert.Equal(t, 8, surface)

	assert.Equal(t, BlockTypeGrass, g.Block(3, surface, 4))
	assert.Equal(t, BlockTypeRock, g.Block(3, surface-1, 4))
	assert.Equal(t, BlockTypeRock, g.Block(0, 0, 0))
	assert.Equal(t, BlockTypeAir, g.Block(3, surface+1, 4))
	assert.Equal(t, surface, g.LightDepth(3, 4))
}

func TestSetBlockThenIsSolid(t *testing.T) {
	g := NewEmpty(4, 4, 4)
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			for z := 0; z < 4; z++ {
				g.SetBlock(x, y, z, BlockTypeRock)
				require.True(t, g.IsSolid(x, y, z))
				g.SetBlock(x, y, z, BlockTypeAir)
				require.False(t, g.IsSolid(x, y, z))
			}
		}
	}
}

func TestOutOfBoundsIsNeutral(t *testing.T) {
	g := New(4, 4, 4)
	coords := [][3]int{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}, {4, 0, 0}, {0, 4, 0}, {0, 0, 4}, {100, 100, 100}}
	sub := g.Subscribe()
	for _, c := range coords {
		g.SetBlock(c[0], c[1], c[2], BlockTypeRock)
		assert.False(t, g.IsSolid(c[0], c[1], c[2]), "coord %v", c)
		assert.Equal(t, Bright, g.Brightness(c[0], c[1], c[2]), "coord %v", c)
	}
	assert.Empty(t, sub.Drain())
}

func TestBrightnessBelowSurface(t *testing.T) {
	g := NewEmpty(4, 4, 8)
	g.SetBlock(1, 5, 1, BlockTypeRock)

	assert.Equal(t, 5, g.LightDepth(1, 1))
	assert.Equal(t, Dark, g.Brightness(1, 4, 1))
	assert.Equal(t, Dark, g.Brightness(1, 0, 1))
	assert.Equal(t, Bright, g.Brightness(1, 5, 1))
	assert.Equal(t, Bright, g.Brightness(1, 6, 1))
	// neighbouring column is untouched
	assert.Equal(t, Bright, g.Brightness(2, 0, 1))
}

func TestSetBlockEmitsEvents(t *testing.T) {
	g := NewEmpty(4, 4, 8)
	sub := g.Subscribe()

	g.SetBlock(2, 6, 3, BlockTypeRock)
	events := sub.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Kind: TileChanged, X: 2, Y: 6, Z: 3}, events[0])
	assert.Equal(t, Event{Kind: LightColumnChanged, X: 2, Z: 3, Y0: 0, Y1: 6}, events[1])

	// a block under the surface does not move it
	g.SetBlock(2, 2, 3, BlockTypeRock)
	events = sub.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, TileChanged, events[0].Kind)

	// removing the top block drops the surface to the next blocker
	g.SetBlock(2, 6, 3, BlockTypeAir)
	events = sub.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Kind: LightColumnChanged, X: 2, Z: 3, Y0: 2, Y1: 6}, events[1])

	// same value again is a no-op
	g.SetBlock(2, 2, 3, BlockTypeRock)
	assert.Empty(t, sub.Drain())
}

func TestUnsubscribe(t *testing.T) {
	g := NewEmpty(4, 4, 4)
	a := g.Subscribe()
	b := g.Subscribe()
	g.Unsubscribe(a)

	g.SetBlock(0, 0, 0, BlockTypeRock)
	assert.Equal(t, 0, a.Pending())
	assert.Equal(t, 1, b.Pending())
}

func TestReplaceFiresAllChanged(t *testing.T) {
	g := NewEmpty(2, 2, 2)
	sub := g.Subscribe()
	g.SetBlock(0, 0, 0, BlockTypeRock)

	data := make([]byte, 8)
	data[g.index(1, 1, 1)] = byte(BlockTypeGrass)
	require.NoError(t, g.Replace(data))

	events := sub.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, AllChanged, events[0].Kind)
	assert.True(t, g.IsSolid(1, 1, 1))
	assert.False(t, g.IsSolid(0, 0, 0))
	assert.Equal(t, 1, g.LightDepth(1, 1))
}

func TestReplaceRejectsWrongSize(t *testing.T) {
	g := New(2, 2, 3)
	before := g.Bytes()
	err := g.Replace(make([]byte, 3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSizeMismatch))
	assert.Equal(t, before, g.Bytes())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := New(8, 8, 8)
	g.SetBlock(1, 7, 1, BlockTypeRock)
	g.SetBlock(4, 0, 4, BlockTypeAir)
	store := &memStore{}
	require.NoError(t, g.Save(store))

	other := New(8, 8, 8)
	require.NoError(t, other.Load(store))
	assert.Equal(t, g.Bytes(), other.Bytes())
	assert.Equal(t, 7, other.LightDepth(1, 1))
}

func TestLoadFailureKeepsTerrain(t *testing.T) {
	g := New(4, 4, 4)
	before := g.Bytes()
	sub := g.Subscribe()

	err := g.Load(&memStore{err: errors.New("missing")})
	require.Error(t, err)
	assert.Equal(t, before, g.Bytes())

	err = g.Load(&memStore{data: []byte{1, 2, 3}})
	require.Error(t, err)
	assert.Equal(t, before, g.Bytes())
	assert.Empty(t, sub.Drain())
}

func TestResetRestoresTerrain(t *testing.T) {
	g := New(4, 4, 6)
	want := g.Bytes()
	g.SetBlock(0, 5, 0, BlockTypeRock)
	g.SetBlock(0, 0, 0, BlockTypeAir)
	sub := g.Subscribe()

	g.Reset()
	assert.Equal(t, want, g.Bytes())
	events := sub.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, AllChanged, events[0].Kind)
}

func TestPartition(t *testing.T) {
	g := NewEmpty(20, 16, 10)
	chunks := Partition(g, 16)
	require.Len(t, chunks, 2)

	assert.Equal(t, ChunkCoord{0, 0, 0}, chunks[0].Coord)
	assert.Equal(t, 16, chunks[0].X1)
	assert.Equal(t, 10, chunks[0].Y1)
	assert.Equal(t, 16, chunks[0].Z1)

	assert.Equal(t, ChunkCoord{1, 0, 0}, chunks[1].Coord)
	assert.Equal(t, 16, chunks[1].X0)
	assert.Equal(t, 20, chunks[1].X1)
	assert.True(t, chunks[1].Contains(19, 9, 15))
	assert.False(t, chunks[1].Contains(15, 0, 0))
	for _, c := range chunks {
		assert.True(t, c.IsDirty())
	}
}

func BenchmarkSetBlock(b *testing.B) {
	g := New(256, 256, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t := BlockTypeRock
		if i%2 == 0 {
			t = BlockTypeAir
		}
		g.SetBlock(i%256, 63, (i*31)%256, t)
	}
}
