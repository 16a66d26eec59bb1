package world

import (
	"github.com/pkg/errors"

	"voxelcore/internal/logging"
	"voxelcore/internal/profiling"
)

// Brightness factors returned by Grid.Brightness.
const (
	Dark   float32 = 0.8
	Bright float32 = 1.0
)

// ErrSizeMismatch is returned when a block dump does not fit the grid dimensions.
var ErrSizeMismatch = errors.New("block data does not match grid size")

// Store is the persistence collaborator: a flat dump of the block array.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Grid is a dense box of blocks. Width runs along X, Height along Z and
// Depth along the vertical Y axis.
type Grid struct {
	Width, Height, Depth int

	blocks []byte
	// topmost light-blocking y per (x,z) column, 0 for an empty column
	lightDepths []int

	subs []*Subscription
}

// New allocates a grid filled with the default terrain.
func New(width, height, depth int) *Grid {
	g := NewEmpty(width, height, depth)
	g.fillTerrain()
	g.calcLightDepths(0, 0, width, height)
	return g
}

// NewEmpty allocates a grid that contains only air.
func NewEmpty(width, height, depth int) *Grid {
	return &Grid{
		Width:       width,
		Height:      height,
		Depth:       depth,
		blocks:      make([]byte, width*height*depth),
		lightDepths: make([]int, width*height),
	}
}

// SurfaceLevel is the y of the top terrain layer written by the default fill.
func (g *Grid) SurfaceLevel() int {
	return g.Depth * 2 / 3
}

func (g *Grid) fillTerrain() {
	surface := g.SurfaceLevel()
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Depth; y++ {
			for z := 0; z < g.Height; z++ {
				var t BlockType
				switch {
				case y == surface:
					t = BlockTypeGrass
				case y < surface:
					t = BlockTypeRock
				}
				g.blocks[g.index(x, y, z)] = byte(t)
			}
		}
	}
}

func (g *Grid) index(x, y, z int) int {
	return (y*g.Height+z)*g.Width + x
}

// Contains reports whether the coordinate lies inside the grid.
func (g *Grid) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.Width && y < g.Depth && z < g.Height
}

// Block returns the block at the coordinate, or air outside the grid.
func (g *Grid) Block(x, y, z int) BlockType {
	if !g.Contains(x, y, z) {
		return BlockTypeAir
	}
	return BlockType(g.blocks[g.index(x, y, z)])
}

// IsSolid is false for every coordinate outside the grid.
func (g *Grid) IsSolid(x, y, z int) bool {
	return g.Block(x, y, z).IsSolid()
}

// IsAir is the inverse of IsSolid.
func (g *Grid) IsAir(x, y, z int) bool {
	return !g.IsSolid(x, y, z)
}

func (g *Grid) isLightBlocker(x, y, z int) bool {
	return g.Block(x, y, z).BlocksLight()
}

// SetBlock writes one block. Writes outside the grid and writes that do not
// change the stored value are ignored.
func (g *Grid) SetBlock(x, y, z int, t BlockType) {
	if !g.Contains(x, y, z) {
		return
	}
	i := g.index(x, y, z)
	if g.blocks[i] == byte(t) {
		return
	}
	g.blocks[i] = byte(t)
	g.publish(Event{Kind: TileChanged, X: x, Y: y, Z: z})
	g.calcLightDepths(x, z, 1, 1)
}

// calcLightDepths rescans w×h columns starting at (x0, z0) and reports every
// column whose surface moved.
func (g *Grid) calcLightDepths(x0, z0, w, h int) {
	for x := x0; x < x0+w; x++ {
		for z := z0; z < z0+h; z++ {
			col := x + z*g.Width
			old := g.lightDepths[col]
			y := g.Depth - 1
			for y > 0 && !g.isLightBlocker(x, y, z) {
				y--
			}
			g.lightDepths[col] = y
			if old != y {
				y0, y1 := old, y
				if y0 > y1 {
					y0, y1 = y1, y0
				}
				g.publish(Event{Kind: LightColumnChanged, X: x, Z: z, Y0: y0, Y1: y1})
			}
		}
	}
}

// LightDepth returns the cached light surface of the column, 0 outside the grid.
func (g *Grid) LightDepth(x, z int) int {
	if x < 0 || z < 0 || x >= g.Width || z >= g.Height {
		return 0
	}
	return g.lightDepths[x+z*g.Width]
}

// Brightness is Dark strictly below the column's light surface and Bright
// everywhere else, including outside the grid.
func (g *Grid) Brightness(x, y, z int) float32 {
	if !g.Contains(x, y, z) {
		return Bright
	}
	if y < g.lightDepths[x+z*g.Width] {
		return Dark
	}
	return Bright
}

// Bytes returns a copy of the raw block array.
func (g *Grid) Bytes() []byte {
	out := make([]byte, len(g.blocks))
	copy(out, g.blocks)
	return out
}

// Replace swaps in a whole block array and invalidates every subscriber.
func (g *Grid) Replace(data []byte) error {
	if len(data) != len(g.blocks) {
		return errors.Wrapf(ErrSizeMismatch, "got %d bytes, want %d", len(data), len(g.blocks))
	}
	copy(g.blocks, data)
	g.recalcAll()
	return nil
}

// Reset restores the default terrain.
func (g *Grid) Reset() {
	g.fillTerrain()
	g.recalcAll()
}

func (g *Grid) recalcAll() {
	g.calcLightDepths(0, 0, g.Width, g.Height)
	// AllChanged drops the column events queued just above.
	g.publish(Event{Kind: AllChanged})
}

// Load replaces the blocks with the store's dump. On failure the current
// blocks are kept, the problem is logged and the error is returned so the
// caller can decide whether it matters.
func (g *Grid) Load(store Store) error {
	defer profiling.Track("world.Load")()
	data, err := store.Load()
	if err != nil {
		logging.Warn("world: load failed, keeping current terrain: %v", err)
		return errors.Wrap(err, "load level")
	}
	if err := g.Replace(data); err != nil {
		logging.Warn("world: rejected level data, keeping current terrain: %v", err)
		return err
	}
	logging.Info("world: loaded %d blocks", len(data))
	return nil
}

// Save writes the raw block array to the store.
func (g *Grid) Save(store Store) error {
	defer profiling.Track("world.Save")()
	if err := store.Save(g.Bytes()); err != nil {
		return errors.Wrap(err, "save level")
	}
	logging.Info("world: saved %d blocks", len(g.blocks))
	return nil
}
