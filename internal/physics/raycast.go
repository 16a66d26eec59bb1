package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/profiling"
	"voxelcore/internal/world"
)

const (
	// DefaultReach is how far the view ray looks for a block.
	DefaultReach     = 4.0
	MaxReachDistance = 16.0
)

// Face identifies one side of a block.
type Face int

const (
	FaceBottom Face = iota // -Y
	FaceTop                // +Y
	FaceFront              // -Z
	FaceBack               // +Z
	FaceLeft               // -X
	FaceRight              // +X
	FaceCount
)

var faceNormals = [FaceCount][3]int{
	FaceBottom: {0, -1, 0},
	FaceTop:    {0, 1, 0},
	FaceFront:  {0, 0, -1},
	FaceBack:   {0, 0, 1},
	FaceLeft:   {-1, 0, 0},
	FaceRight:  {1, 0, 0},
}

// Normal returns the outward unit offset of the face.
func (f Face) Normal() [3]int {
	if f < 0 || f >= FaceCount {
		return [3]int{}
	}
	return faceNormals[f]
}

func (f Face) String() string {
	switch f {
	case FaceBottom:
		return "bottom"
	case FaceTop:
		return "top"
	case FaceFront:
		return "front"
	case FaceBack:
		return "back"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	}
	return "none"
}

// HitResult is the closest block struck by a pick ray.
type HitResult struct {
	X, Y, Z int
	// Order is the traversal step at which the block was found.
	Order    int
	Face     Face
	Distance float32
}

// Position returns the struck block coordinate.
func (h HitResult) Position() [3]int {
	return [3]int{h.X, h.Y, h.Z}
}

// Adjacent returns the cell in front of the struck face, where a placed
// block goes.
func (h HitResult) Adjacent() [3]int {
	n := h.Face.Normal()
	return [3]int{h.X + n[0], h.Y + n[1], h.Z + n[2]}
}

// entryFaces[axis][0] is the face entered when stepping in the positive
// direction, [1] when stepping negative.
var entryFaces = [3][2]Face{
	{FaceLeft, FaceRight},
	{FaceBottom, FaceTop},
	{FaceFront, FaceBack},
}

// Pick walks the grid cells along the ray with a 3D DDA and returns the
// first solid block within reach. The cell containing origin is never
// reported. When the ray crosses an edge or corner exactly, X is stepped
// before Y and Y before Z.
func Pick(g *world.Grid, origin, dir mgl32.Vec3, reach float32) (HitResult, bool) {
	defer profiling.Track("physics.Pick")()
	if reach <= 0 || dir.Len() == 0 {
		return HitResult{}, false
	}
	dir = dir.Normalize()

	var (
		cell   [3]int
		step   [3]int
		tMax   [3]float64
		tDelta [3]float64
	)
	for i := 0; i < 3; i++ {
		o := float64(origin[i])
		d := float64(dir[i])
		cell[i] = int(math.Floor(o))
		switch {
		case d > 0:
			step[i] = 1
			tMax[i] = (float64(cell[i]+1) - o) / d
			tDelta[i] = 1 / d
		case d < 0:
			step[i] = -1
			tMax[i] = (o - float64(cell[i])) / -d
			tDelta[i] = -1 / d
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	limit := float64(reach)
	for order := 0; ; order++ {
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t := tMax[axis]
		if t > limit {
			return HitResult{}, false
		}
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]

		if g.IsSolid(cell[0], cell[1], cell[2]) {
			face := entryFaces[axis][0]
			if step[axis] < 0 {
				face = entryFaces[axis][1]
			}
			return HitResult{
				X:        cell[0],
				Y:        cell[1],
				Z:        cell[2],
				Order:    order,
				Face:     face,
				Distance: float32(t),
			}, true
		}
	}
}
