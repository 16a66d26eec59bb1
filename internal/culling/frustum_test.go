package culling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// camera at the origin looking down -Z
func testFrustum() Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(70), 4.0/3.0, 0.05, 1000)
	return New(proj, mgl32.Ident4())
}

func TestPlanesAreNormalised(t *testing.T) {
	f := testFrustum()
	for i := Right; i <= Front; i++ {
		assert.InDelta(t, 1, f.Plane(i).Vec3().Len(), 1e-5, "plane %d", i)
	}
}

func TestPlaneOrientation(t *testing.T) {
	f := testFrustum()
	// right plane normal points left (inwards), left plane points right
	assert.Less(t, f.Plane(Right).X(), float32(0))
	assert.Greater(t, f.Plane(Left).X(), float32(0))
	assert.Greater(t, f.Plane(Bottom).Y(), float32(0))
	assert.Less(t, f.Plane(Top).Y(), float32(0))
	// far plane faces the camera, near plane faces away
	assert.Greater(t, f.Plane(Back).Z(), float32(0))
	assert.Less(t, f.Plane(Front).Z(), float32(0))
}

func TestPointIn(t *testing.T) {
	f := testFrustum()
	assert.True(t, f.PointIn(0, 0, -10))
	assert.False(t, f.PointIn(0, 0, 10), "behind the camera")
	assert.False(t, f.PointIn(0, 0, -2000), "past the far plane")
	assert.False(t, f.PointIn(100, 0, -10), "far to the right")
	assert.False(t, f.PointIn(0, 0, -0.01), "in front of the near plane")
}

func TestSphereIn(t *testing.T) {
	f := testFrustum()
	assert.True(t, f.SphereIn(0, 0, -10, 1))
	// centre just behind the camera but radius reaches into view
	assert.True(t, f.SphereIn(0, 0, 0.5, 1))
	assert.False(t, f.SphereIn(0, 0, 5, 1))
	assert.False(t, f.SphereIn(100, 0, -10, 2))
}

func TestCubeTests(t *testing.T) {
	f := testFrustum()

	// well inside
	assert.True(t, f.CubeFullyIn(-1, -1, -11, 1, 1, -9))
	assert.True(t, f.CubeIn(-1, -1, -11, 1, 1, -9))

	// straddling the right plane
	assert.False(t, f.CubeFullyIn(0, -1, -11, 30, 1, -9))
	assert.True(t, f.CubeIn(0, -1, -11, 30, 1, -9))

	// entirely behind the camera
	assert.False(t, f.CubeIn(-1, -1, 5, 1, 1, 7))

	// camera inside a chunk
	assert.True(t, f.CubeIn(-8, -8, -8, 8, 8, 8))
	assert.True(t, f.BoxIn(mgl32.Vec3{-8, -8, -8}, mgl32.Vec3{8, 8, 8}))
}

func TestCubeInNeverRejectsVisibleBoxes(t *testing.T) {
	f := testFrustum()
	for x := -40; x <= 40; x += 4 {
		for y := -40; y <= 40; y += 4 {
			for z := -60; z <= 20; z += 4 {
				x0, y0, z0 := float32(x), float32(y), float32(z)
				x1, y1, z1 := x0+4, y0+4, z0+4
				if f.PointIn((x0+x1)/2, (y0+y1)/2, (z0+z1)/2) {
					assert.True(t, f.CubeIn(x0, y0, z0, x1, y1, z1), "box at %v,%v,%v", x, y, z)
				}
				if f.CubeFullyIn(x0, y0, z0, x1, y1, z1) {
					assert.True(t, f.CubeIn(x0, y0, z0, x1, y1, z1))
				}
			}
		}
	}
}

func TestViewTransformIsApplied(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(70), 1, 0.05, 1000)
	// camera at (0,0,20) looking at the origin
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 20}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	f := New(proj, view)
	assert.True(t, f.PointIn(0, 0, 0))
	assert.False(t, f.PointIn(0, 0, 30))
}
