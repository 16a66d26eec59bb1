package graphics

import (
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/png"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"voxelcore/internal/logging"
	"voxelcore/internal/meshing"
)

// AtlasSize is the side of the terrain atlas in pixels; it holds
// meshing.AtlasCells cells per row and column.
const AtlasSize = 256

// LoadTexture uploads an RGBA image as a nearest-filtered 2D texture.
func LoadTexture(rgba *image.RGBA) uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(rgba.Rect.Size().X),
		int32(rgba.Rect.Size().Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba.Pix),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}

// LoadAtlasImage decodes a PNG and scales it to AtlasSize square so the
// cell coordinates of the mesher line up whatever the source resolution.
func LoadAtlasImage(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open atlas")
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decode atlas %s", path)
	}
	return normalizeAtlas(img), nil
}

func normalizeAtlas(img image.Image) *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, AtlasSize, AtlasSize))
	if img.Bounds().Size() == rgba.Rect.Size() {
		stddraw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, stddraw.Src)
		return rgba
	}
	draw.NearestNeighbor.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	return rgba
}

// DefaultAtlas paints a low resolution atlas with a grass cell at 0 and a
// rock cell at 1 and scales it up.
func DefaultAtlas() *image.RGBA {
	const px = 8 // texels per cell before scaling
	small := image.NewRGBA(image.Rect(0, 0, meshing.AtlasCells*px, meshing.AtlasCells*px))

	paintCell(small, meshing.GrassTile.Atlas, px, color.RGBA{R: 96, G: 160, B: 64, A: 255}, 24)
	paintCell(small, meshing.RockTile.Atlas, px, color.RGBA{R: 128, G: 128, B: 128, A: 255}, 40)

	return normalizeAtlas(small)
}

func paintCell(img *image.RGBA, cell, px int, base color.RGBA, spread int) {
	x0 := cell * px
	for y := 0; y < px; y++ {
		for x := 0; x < px; x++ {
			d := int(noise(x0+x, y)%uint32(spread)) - spread/2
			img.SetRGBA(x0+x, y, color.RGBA{
				R: clampByte(int(base.R) + d),
				G: clampByte(int(base.G) + d),
				B: clampByte(int(base.B) + d),
				A: 255,
			})
		}
	}
}

func noise(x, y int) uint32 {
	h := uint32(x)*374761393 + uint32(y)*668265263
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// LoadAtlas uploads the atlas at path, or the built-in one when path is
// empty or unreadable.
func LoadAtlas(path string) uint32 {
	if path != "" {
		img, err := LoadAtlasImage(path)
		if err == nil {
			return LoadTexture(img)
		}
		logging.Warn("graphics: %v, using the built-in atlas", err)
	}
	return LoadTexture(DefaultAtlas())
}
