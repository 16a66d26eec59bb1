package culling

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/profiling"
)

// Plane indices.
const (
	Right = iota
	Left
	Bottom
	Top
	Back
	Front
)

type plane struct {
	a, b, c, d float32
}

func (p plane) distance(x, y, z float32) float32 {
	return p.a*x + p.b*y + p.c*z + p.d
}

// Frustum holds the six clip planes of one camera. It is a plain value
// built once per frame and passed to whoever needs it.
type Frustum struct {
	planes [6]plane
}

// New extracts the planes of proj*view. Each plane is normalised so
// distances are in world units.
func New(proj, view mgl32.Mat4) Frustum {
	defer profiling.Track("culling.New")()
	return FromClip(proj.Mul4(view))
}

// FromClip extracts the planes of a combined clip matrix.
func FromClip(clip mgl32.Mat4) Frustum {
	// Matrix is in column-major order in mgl32
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	var f Frustum
	f.planes[Right] = normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03})
	f.planes[Left] = normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03})
	f.planes[Bottom] = normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13})
	f.planes[Top] = normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13})
	f.planes[Back] = normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23})
	f.planes[Front] = normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23})
	return f
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// Plane returns the normalised (a, b, c, d) coefficients of plane i.
func (f Frustum) Plane(i int) mgl32.Vec4 {
	p := f.planes[i]
	return mgl32.Vec4{p.a, p.b, p.c, p.d}
}

// PointIn reports whether the point is on the inner side of every plane.
func (f Frustum) PointIn(x, y, z float32) bool {
	for i := range f.planes {
		if f.planes[i].distance(x, y, z) < 0 {
			return false
		}
	}
	return true
}

// SphereIn reports whether any part of the sphere may be inside.
func (f Frustum) SphereIn(x, y, z, radius float32) bool {
	for i := range f.planes {
		if f.planes[i].distance(x, y, z) < -radius {
			return false
		}
	}
	return true
}

// CubeFullyIn reports whether all eight corners of the box are inside.
func (f Frustum) CubeFullyIn(x0, y0, z0, x1, y1, z1 float32) bool {
	for i := range f.planes {
		p := f.planes[i]
		// the corner farthest against the normal decides
		nx, ny, nz := x0, y0, z0
		if p.a < 0 {
			nx = x1
		}
		if p.b < 0 {
			ny = y1
		}
		if p.c < 0 {
			nz = z1
		}
		if p.distance(nx, ny, nz) < 0 {
			return false
		}
	}
	return true
}

// CubeIn reports whether the box may touch the frustum: for every plane at
// least one corner is inside. Boxes near the frustum's edges can pass
// without actually being visible; visible boxes never fail.
func (f Frustum) CubeIn(x0, y0, z0, x1, y1, z1 float32) bool {
	for i := range f.planes {
		p := f.planes[i]
		// Select the positive vertex for this plane normal
		px, py, pz := x1, y1, z1
		if p.a < 0 {
			px = x0
		}
		if p.b < 0 {
			py = y0
		}
		if p.c < 0 {
			pz = z0
		}
		if p.distance(px, py, pz) < 0 {
			return false
		}
	}
	return true
}

// BoxIn is CubeIn for corner vectors.
func (f Frustum) BoxIn(min, max mgl32.Vec3) bool {
	return f.CubeIn(min.X(), min.Y(), min.Z(), max.X(), max.Y(), max.Z())
}
