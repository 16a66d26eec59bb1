// Package glyphs bakes a TrueType font into a single-channel atlas and lays
// out text as textured triangles. It has no GL dependency.
package glyphs

import (
	"image"
	"image/draw"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// First and Last bound the baked rune range, printable ASCII.
const (
	First rune = ' '
	Last  rune = '~'
)

const (
	atlasWidth = 256
	padding    = 1
)

// Glyph is one baked rune. Rect is its pixel rectangle in the atlas;
// Offset is the top-left of the bitmap relative to the pen on the baseline.
type Glyph struct {
	Rect    image.Rectangle
	Offset  image.Point
	Advance float32
}

// Atlas holds the baked glyphs and their bitmap.
type Atlas struct {
	Image  *image.Alpha
	Glyphs map[rune]Glyph
	// Ascent is the distance from the top of a line to its baseline.
	Ascent float32
	// LineHeight is the recommended distance between baselines.
	LineHeight float32
}

// Bake rasterizes First..Last at size pixels. The atlas is 256 wide and as
// tall as needed, rounded up to a power of two.
func Bake(ttf []byte, size float64) (*Atlas, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, errors.Wrap(err, "parse font")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, errors.Wrap(err, "new face")
	}
	defer face.Close()

	type placed struct {
		r      rune
		bounds image.Rectangle
		mask   image.Image
		mp     image.Point
		adv    fixed.Int26_6
		at     image.Point
	}
	var (
		all        []placed
		x, y, rowH int
	)
	for r := First; r <= Last; r++ {
		dr, mask, mp, adv, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		p := placed{r: r, bounds: dr, mask: mask, mp: mp, adv: adv}
		w, h := dr.Dx(), dr.Dy()
		if w > 0 && h > 0 {
			if x+w+padding > atlasWidth {
				x, y, rowH = 0, y+rowH+padding, 0
			}
			p.at = image.Pt(x, y)
			x += w + padding
			rowH = max(rowH, h)
		}
		all = append(all, p)
	}

	height := 1
	for height < y+rowH {
		height <<= 1
	}
	a := &Atlas{
		Image:  image.NewAlpha(image.Rect(0, 0, atlasWidth, height)),
		Glyphs: make(map[rune]Glyph, len(all)),
	}
	for _, p := range all {
		rect := image.Rectangle{Min: p.at, Max: p.at.Add(p.bounds.Size())}
		if !rect.Empty() {
			draw.Draw(a.Image, rect, p.mask, p.mp, draw.Src)
		}
		a.Glyphs[p.r] = Glyph{
			Rect:    rect,
			Offset:  p.bounds.Min,
			Advance: float32(p.adv) / 64,
		}
	}

	m := face.Metrics()
	a.Ascent = float32(m.Ascent) / 64
	a.LineHeight = float32(m.Height) / 64
	return a, nil
}

// Layout appends two triangles per visible rune of line to dst, each
// vertex as (x, y, u, v) with y growing downwards. (x, y) is the top-left
// of the line. Runes outside the atlas advance like a space.
func (a *Atlas) Layout(dst []float32, line string, x, y float32) []float32 {
	baseline := y + a.Ascent
	w := float32(a.Image.Rect.Dx())
	h := float32(a.Image.Rect.Dy())
	for _, r := range line {
		g, ok := a.Glyphs[r]
		if !ok {
			g = a.Glyphs[' ']
		}
		if ok && !g.Rect.Empty() {
			x0 := x + float32(g.Offset.X)
			y0 := baseline + float32(g.Offset.Y)
			x1 := x0 + float32(g.Rect.Dx())
			y1 := y0 + float32(g.Rect.Dy())
			u0, v0 := float32(g.Rect.Min.X)/w, float32(g.Rect.Min.Y)/h
			u1, v1 := float32(g.Rect.Max.X)/w, float32(g.Rect.Max.Y)/h
			dst = append(dst,
				x0, y1, u0, v1,
				x0, y0, u0, v0,
				x1, y0, u1, v0,
				x0, y1, u0, v1,
				x1, y0, u1, v0,
				x1, y1, u1, v1,
			)
		}
		x += g.Advance
	}
	return dst
}
