// Package glyph builds the CP437 glyph atlas shared by terrain art, unit art and text overlays.
package glyph

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	Width     = 16
	Height    = 16
	AtlasCols = 16
	AtlasRows = 16
)

// Atlas holds a 16x16 grid of CP437 glyph coverage masks.
type Atlas struct {
	image *image.Alpha
}

// NewAtlas generates the CP437 atlas.
// ASCII characters (32-126) are rendered with basicfont.Face7x13.
// Box-drawing and block characters are drawn manually.
func NewAtlas() *Atlas {
	img := image.NewAlpha(image.Rect(0, 0, AtlasCols*Width, AtlasRows*Height))
	face := basicfont.Face7x13

	for code := 0; code < 256; code++ {
		cx := (code % AtlasCols) * Width
		cy := (code / AtlasCols) * Height

		if code >= 32 && code <= 126 {
			drawFontGlyph(img, face, cx, cy, rune(code))
			continue
		}
		if bc, ok := boxChars[byte(code)]; ok {
			drawBoxGlyph(img, cx, cy, bc[0], bc[1], bc[2], bc[3])
			continue
		}
		drawBlockGlyph(img, cx, cy, byte(code))
	}
	return &Atlas{image: img}
}

// Image returns the whole atlas.
func (a *Atlas) Image() *image.Alpha { return a.image }

// Bounds returns the atlas rectangle occupied by code.
func (a *Atlas) Bounds(code byte) image.Rectangle {
	x := int(code%AtlasCols) * Width
	y := int(code/AtlasCols) * Height
	return image.Rect(x, y, x+Width, y+Height)
}

// Mask returns the coverage mask of a single glyph.
func (a *Atlas) Mask(code byte) *image.Alpha {
	return a.image.SubImage(a.Bounds(code)).(*image.Alpha)
}

// Covered reports whether pixel (x, y) of glyph code is set.
func (a *Atlas) Covered(code byte, x, y int) bool {
	r := a.Bounds(code)
	return a.image.AlphaAt(r.Min.X+x, r.Min.Y+y).A != 0
}

// drawFontGlyph renders a single ASCII character into the atlas.
// basicfont.Face7x13 glyphs are 7x13, centered in a 16x16 cell.
func drawFontGlyph(img *image.Alpha, face font.Face, cellX, cellY int, r rune) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Opaque),
		Face: face,
		Dot:  fixed.P(cellX+4, cellY+13), // baseline at y+13
	}
	d.DrawString(string(r))
}

// boxChars maps CP437 codes to single-line box connection flags: {left, right, top, bottom}.
var boxChars = map[byte][4]bool{
	179: {false, false, true, true},  // │
	180: {true, false, true, true},   // ┤
	191: {true, false, false, true},  // ┐
	192: {false, true, true, false},  // └
	193: {true, true, true, false},   // ┴
	194: {true, true, false, true},   // ┬
	195: {false, true, true, true},   // ├
	196: {true, true, false, false},  // ─
	197: {true, true, true, true},    // ┼
	217: {true, false, true, false},  // ┘
	218: {false, true, false, true},  // ┌
}

// drawBoxGlyph draws a single-line box-drawing character.
// Lines are 2 pixels wide, centered in the cell.
func drawBoxGlyph(img *image.Alpha, cellX, cellY int, left, right, top, bottom bool) {
	cx := cellX + 7
	cy := cellY + 7

	if left {
		fill(img, cellX, cy, cx+2, cy+2)
	}
	if right {
		fill(img, cx, cy, cellX+Width, cy+2)
	}
	if top {
		fill(img, cx, cellY, cx+2, cy+2)
	}
	if bottom {
		fill(img, cx, cy, cx+2, cellY+Height)
	}
}

// drawBlockGlyph draws block elements and shading characters.
func drawBlockGlyph(img *image.Alpha, cellX, cellY int, code byte) {
	switch code {
	case 176, 177, 178: // ░ ▒ ▓
		for y := 0; y < Height; y++ {
			for x := 0; x < Width; x++ {
				var on bool
				switch code {
				case 176:
					on = (x+y)%4 == 0
				case 177:
					on = (x+y)%2 == 0
				default:
					on = (x+y)%4 != 0
				}
				if on {
					img.SetAlpha(cellX+x, cellY+y, color.Alpha{A: 0xff})
				}
			}
		}
	case 219: // █ Full block
		fill(img, cellX, cellY, cellX+Width, cellY+Height)
	case 220: // ▄ Lower half
		fill(img, cellX, cellY+Height/2, cellX+Width, cellY+Height)
	case 221: // ▌ Left half
		fill(img, cellX, cellY, cellX+Width/2, cellY+Height)
	case 222: // ▐ Right half
		fill(img, cellX+Width/2, cellY, cellX+Width, cellY+Height)
	case 223: // ▀ Upper half
		fill(img, cellX, cellY, cellX+Width, cellY+Height/2)
	case 254: // ■ Small square
		fill(img, cellX+4, cellY+4, cellX+12, cellY+12)
	case 127: // ⌂ house
		fill(img, cellX+3, cellY+3, cellX+13, cellY+5)
		fill(img, cellX+3, cellY+3, cellX+5, cellY+13)
		fill(img, cellX+11, cellY+3, cellX+13, cellY+13)
		fill(img, cellX+3, cellY+11, cellX+13, cellY+13)
	case 30: // ▲
		for y := 3; y < 13; y++ {
			half := (y - 3) / 2
			fill(img, cellX+7-half, cellY+y, cellX+9+half, cellY+y+1)
		}
	}
}

func fill(img *image.Alpha, x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetAlpha(x, y, color.Alpha{A: 0xff})
		}
	}
}
