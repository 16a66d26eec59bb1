package world

// BlockType is the byte stored per grid cell.
type BlockType uint8

const (
	BlockTypeAir BlockType = iota
	BlockTypeRock
	BlockTypeGrass
)

var blockNames = map[BlockType]string{
	BlockTypeAir:   "air",
	BlockTypeRock:  "rock",
	BlockTypeGrass: "grass",
}

// String returns the lowercase block name, or "unknown".
func (b BlockType) String() string {
	if name, ok := blockNames[b]; ok {
		return name
	}
	return "unknown"
}

// IsSolid reports whether the block takes part in collision and face culling.
func (b BlockType) IsSolid() bool {
	return b != BlockTypeAir
}

// BlocksLight reports whether the block stops the sky light of its column.
// Every solid block is opaque for now.
func (b BlockType) BlocksLight() bool {
	return b.IsSolid()
}
