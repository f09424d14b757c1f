package graphics

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/spacehole-rogue/skirmish/internal/render"
)

type paletteRow struct {
	colors [render.PaletteSize]color.RGBA
	gen    uint64
}

// paletteCache mirrors the palette bank and tracks which rows changed, so
// only sprites drawn with a modified palette are converted again.
type paletteCache struct {
	version uint64
	synced  bool
	rows    []paletteRow
}

func newPaletteCache() *paletteCache {
	return &paletteCache{}
}

func (c *paletteCache) update(bank render.PaletteSource) {
	if c.synced && bank.Version() == c.version {
		return
	}
	c.version, c.synced = bank.Version(), true
	for i := 0; i < bank.Rows(); i++ {
		src := bank.Row(i)
		if i == len(c.rows) {
			c.rows = append(c.rows, paletteRow{})
		}
		r := &c.rows[i]
		if r.gen > 0 && equalRow(r.colors[:], src) {
			continue
		}
		copy(r.colors[:], src)
		r.gen++
	}
}

func (c *paletteCache) generation(row int) uint64 {
	if row < 0 || row >= len(c.rows) {
		return 0
	}
	return c.rows[row].gen
}

func (c *paletteCache) row(i int) []color.RGBA {
	if i < 0 || i >= len(c.rows) {
		return nil
	}
	return c.rows[i].colors[:]
}

func equalRow(a, b []color.RGBA) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// spriteKey identifies converted art by its indexed pixels, so sprites that
// share an image with a different anchor share one entry.
type spriteKey struct {
	image *image.Paletted
	row   int
}

type cachedSprite struct {
	img  *ebiten.Image
	gen  uint64
	used bool
}

// spriteCache holds palette-converted sprites. Entries not used during a
// frame are released at the start of the next one.
type spriteCache struct {
	entries map[spriteKey]*cachedSprite
	upload  func(*image.RGBA) *ebiten.Image
}

func newSpriteCache() *spriteCache {
	return &spriteCache{
		entries: make(map[spriteKey]*cachedSprite),
		upload:  func(rgba *image.RGBA) *ebiten.Image { return ebiten.NewImageFromImage(rgba) },
	}
}

func (c *spriteCache) len() int { return len(c.entries) }

func (c *spriteCache) get(sp *render.Sprite, row int, gen uint64, colors func() []color.RGBA) *ebiten.Image {
	k := spriteKey{image: sp.Image, row: row}
	e, ok := c.entries[k]
	if ok && e.gen == gen {
		e.used = true
		return e.img
	}

	rgba := convertSprite(sp.Image, colors())
	if ok && e.img.Bounds().Size() == rgba.Rect.Size() {
		e.img.WritePixels(rgba.Pix)
	} else {
		if ok {
			e.img.Deallocate()
		}
		e = &cachedSprite{img: c.upload(rgba)}
		c.entries[k] = e
	}
	e.gen = gen
	e.used = true
	return e.img
}

func (c *spriteCache) evict() {
	for k, e := range c.entries {
		if !e.used {
			e.img.Deallocate()
			delete(c.entries, k)
			continue
		}
		e.used = false
	}
}

// convertSprite resolves palette indices to premultiplied colors. Index 0 is
// always transparent; indices outside row are too.
func convertSprite(src *image.Paletted, row []color.RGBA) *image.RGBA {
	b := src.Rect
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			idx := int(src.ColorIndexAt(b.Min.X+x, b.Min.Y+y))
			if idx == render.ColorTransparent || idx >= len(row) {
				continue
			}
			dst.SetRGBA(x, y, premultiply(row[idx]))
		}
	}
	return dst
}

func premultiply(c color.RGBA) color.RGBA {
	if c.A == 0xff {
		return c
	}
	a := uint16(c.A)
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 0xff),
		G: uint8(uint16(c.G) * a / 0xff),
		B: uint8(uint16(c.B) * a / 0xff),
		A: c.A,
	}
}
