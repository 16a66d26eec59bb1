package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/graphics/glyphs"
)

// textOverlay draws screen-space text lines from a baked glyph atlas.
type textOverlay struct {
	atlas      *glyphs.Atlas
	texture    uint32
	shader     *Shader
	projection mgl32.Mat4
	vao, vbo   uint32
	verts      []float32
}

func newTextOverlay(ttf []byte, size float64) (*textOverlay, error) {
	atlas, err := glyphs.Bake(ttf, size)
	if err != nil {
		return nil, err
	}
	shader, err := LoadShader("font")
	if err != nil {
		return nil, err
	}
	o := &textOverlay{atlas: atlas, shader: shader, projection: mgl32.Ortho(0, 1, 1, 0, 0, 1)}

	img := atlas.Image
	gl.GenTextures(1, &o.texture)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindVertexArray(0)
	return o, nil
}

// SetViewport maps text coordinates to window pixels, origin top-left.
func (o *textOverlay) SetViewport(width, height int) {
	o.projection = mgl32.Ortho(0, float32(width), float32(height), 0, 0, 1)
}

// Draw renders lines top-down starting at (x, y), in one draw call.
func (o *textOverlay) Draw(lines []string, x, y float32, color mgl32.Vec3) {
	o.verts = o.verts[:0]
	for _, line := range lines {
		o.verts = o.atlas.Layout(o.verts, line, x, y)
		y += o.atlas.LineHeight
	}
	if len(o.verts) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	o.shader.Use()
	o.shader.SetMatrix4("projection", &o.projection[0])
	o.shader.SetVector3("textColor", color.X(), color.Y(), color.Z())
	o.shader.SetInt("text", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.texture)

	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(o.verts)*4, gl.Ptr(o.verts), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(o.verts)/4))
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
}

func (o *textOverlay) Dispose() {
	gl.DeleteTextures(1, &o.texture)
	gl.DeleteVertexArrays(1, &o.vao)
	gl.DeleteBuffers(1, &o.vbo)
	o.shader.Delete()
}
