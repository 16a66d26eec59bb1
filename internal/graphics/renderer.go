package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"voxelcore/internal/meshing"
	"voxelcore/internal/profiling"
)

// Fog and clear colors.
var (
	FogColor   = mgl32.Vec3{14.0 / 255, 11.0 / 255, 10.0 / 255}
	ClearColor = mgl32.Vec4{0.5, 0.8, 1.0, 0}
)

const overlayPixels = 16

var crosshairVertices = []float32{
	-0.02, 0.0, 0,
	0.02, 0.0, 0,
	0.0, -0.02, 0,
	0.0, 0.02, 0,
}

// Renderer owns the per-frame GL state: chunk program, selection highlight,
// crosshair and text overlay. Chunk geometry itself lives in
// ChunkResources.
type Renderer struct {
	chunkShader     *Shader
	highlightShader *Shader
	atlas           uint32
	fogDensity      float32

	highlightVAO uint32
	highlightVBO uint32
	crosshairVAO uint32
	crosshairVBO uint32
	scratch      []float32

	overlay      *textOverlay
	overlayLines []string

	width, height int
	proj, view    mgl32.Mat4
}

// NewRenderer initializes GL and compiles the programs. The atlas falls
// back to the built-in one when atlasPath is empty or unreadable.
func NewRenderer(width, height int, atlasPath string, fogDensity float32) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "init gl")
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	chunkShader, err := LoadShader("chunk")
	if err != nil {
		return nil, err
	}
	highlightShader, err := LoadShader("highlight")
	if err != nil {
		chunkShader.Delete()
		return nil, err
	}

	r := &Renderer{
		chunkShader:     chunkShader,
		highlightShader: highlightShader,
		atlas:           LoadAtlas(atlasPath),
		fogDensity:      fogDensity,
	}
	r.setupHighlightVAO()
	r.setupCrosshairVAO()

	r.overlay, err = newTextOverlay(goregular.TTF, overlayPixels)
	if err != nil {
		r.Dispose()
		return nil, err
	}
	r.SetViewport(width, height)
	return r, nil
}

func (r *Renderer) setupHighlightVAO() {
	gl.GenVertexArrays(1, &r.highlightVAO)
	gl.BindVertexArray(r.highlightVAO)
	gl.GenBuffers(1, &r.highlightVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.highlightVBO)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
}

func (r *Renderer) setupCrosshairVAO() {
	gl.GenVertexArrays(1, &r.crosshairVAO)
	gl.BindVertexArray(r.crosshairVAO)
	gl.GenBuffers(1, &r.crosshairVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.crosshairVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(crosshairVertices)*4, gl.Ptr(crosshairVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
}

// SetViewport resizes the GL viewport and the overlay projection.
func (r *Renderer) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	if r.overlay != nil {
		r.overlay.SetViewport(width, height)
	}
}

// SetOverlay replaces the text lines drawn in the top-left corner.
func (r *Renderer) SetOverlay(lines []string) {
	r.overlayLines = append(r.overlayLines[:0], lines...)
}

// BeginFrame clears the target and binds the chunk program with the
// frame's matrices and the block atlas.
func (r *Renderer) BeginFrame(proj, view mgl32.Mat4) {
	r.proj, r.view = proj, view

	gl.ClearColor(ClearColor.X(), ClearColor.Y(), ClearColor.Z(), ClearColor.W())
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)

	r.chunkShader.Use()
	r.chunkShader.SetMatrix4("proj", &proj[0])
	r.chunkShader.SetMatrix4("view", &view[0])
	r.chunkShader.SetInt("atlas", 0)
	r.chunkShader.SetFloat("fogDensity", r.fogDensity)
	r.chunkShader.SetVector3("fogColor", FogColor.X(), FogColor.Y(), FogColor.Z())
	r.chunkShader.SetBool("fogEnabled", false)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
}

// SetFog toggles fog for the chunk draws that follow.
func (r *Renderer) SetFog(enabled bool) {
	r.chunkShader.Use()
	r.chunkShader.SetBool("fogEnabled", enabled)
}

// DrawHighlight blends untextured geometry over the scene in white with
// the given alpha.
func (r *Renderer) DrawHighlight(batches []meshing.Batch, alpha float32) error {
	defer profiling.Track("graphics.DrawHighlight")()
	r.scratch = r.scratch[:0]
	for _, b := range batches {
		// quads to triangles
		for q := 0; q < b.Quads(); q++ {
			for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
				v := (q*4 + i) * 3
				r.scratch = append(r.scratch, b.Positions[v], b.Positions[v+1], b.Positions[v+2])
			}
		}
	}
	if len(r.scratch) == 0 {
		return nil
	}

	r.highlightShader.Use()
	r.highlightShader.SetMatrix4("proj", &r.proj[0])
	r.highlightShader.SetMatrix4("view", &r.view[0])
	r.highlightShader.SetVector4("color", 1, 1, 1, alpha)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	// the face is coplanar with the block surface
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(-1, -1)

	gl.BindVertexArray(r.highlightVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.highlightVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.scratch)*4, gl.Ptr(r.scratch), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.scratch)/3))
	gl.BindVertexArray(0)

	gl.Disable(gl.POLYGON_OFFSET_FILL)
	gl.Disable(gl.BLEND)
	return checkError("draw highlight")
}

func (r *Renderer) drawCrosshair() {
	aspect := float32(1)
	if r.height > 0 {
		aspect = float32(r.width) / float32(r.height)
	}
	proj := mgl32.Scale3D(1/aspect, 1, 1)
	ident := mgl32.Ident4()

	gl.Disable(gl.DEPTH_TEST)
	r.highlightShader.Use()
	r.highlightShader.SetMatrix4("proj", &proj[0])
	r.highlightShader.SetMatrix4("view", &ident[0])
	r.highlightShader.SetVector4("color", 1, 1, 1, 1)
	gl.BindVertexArray(r.crosshairVAO)
	gl.DrawArrays(gl.LINES, 0, 4)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// EndFrame draws the 2D layer and reports any GL error raised during the
// frame.
func (r *Renderer) EndFrame() error {
	r.drawCrosshair()
	if len(r.overlayLines) > 0 {
		r.overlay.Draw(r.overlayLines, 8, 8, mgl32.Vec3{1, 1, 1})
	}
	return checkError("end frame")
}

// Dispose releases every GL object owned by the renderer.
func (r *Renderer) Dispose() {
	if r.chunkShader != nil {
		r.chunkShader.Delete()
	}
	if r.highlightShader != nil {
		r.highlightShader.Delete()
	}
	if r.overlay != nil {
		r.overlay.Dispose()
	}
	gl.DeleteVertexArrays(1, &r.highlightVAO)
	gl.DeleteBuffers(1, &r.highlightVBO)
	gl.DeleteVertexArrays(1, &r.crosshairVAO)
	gl.DeleteBuffers(1, &r.crosshairVBO)
	gl.DeleteTextures(1, &r.atlas)
}

func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}
