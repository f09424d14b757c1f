package render

import (
	"errors"
	"fmt"
	"image/color"
	"math/bits"
	"slices"
)

// PaletteSize is the number of colors in one palette.
const PaletteSize = 256

var (
	// ErrUnknownPalette means content asked for a palette that was never registered.
	ErrUnknownPalette = errors.New("unknown palette")
	// ErrDuplicatePalette means two providers registered the same palette name.
	ErrDuplicatePalette = errors.New("palette already defined")
)

// Palette is an indexed color table. Index 0 is transparent by convention.
type Palette [PaletteSize]color.RGBA

// MutablePalette is the per-frame working copy handed to palette modifiers.
type MutablePalette struct {
	colors Palette
}

// Color returns entry i.
func (p *MutablePalette) Color(i int) color.RGBA { return p.colors[i] }

// SetColor overwrites entry i.
func (p *MutablePalette) SetColor(i int, c color.RGBA) { p.colors[i] = c }

// SetFromPalette resets every entry from src.
func (p *MutablePalette) SetFromPalette(src *Palette) { p.colors = *src }

// Palette returns a copy of the current colors.
func (p *MutablePalette) Palette() Palette { return p.colors }

// PaletteModifier adjusts modifiable palettes once per frame. Modifiers must
// derive their effect from current world state only; the palettes they receive
// have already been reset to their registered colors.
type PaletteModifier interface {
	AdjustPalette(pals map[string]*MutablePalette)
}

// PaletteSource is the read side of the bank consumed by backends.
type PaletteSource interface {
	Rows() int
	Row(i int) []color.RGBA
	Version() uint64
}

// PaletteBank owns every named palette.
type PaletteBank interface {
	PaletteSource
	GetPalette(name string) (Palette, error)
	GetPaletteIndex(name string) (int, error)
	AddPalette(name string, p Palette, allowModifiers bool) error
	ApplyModifiers(mods []PaletteModifier)
}

// HardwarePalette is the palette bank laid out as rows of a texture: row i
// holds palette i. The row count grows in powers of two.
type HardwarePalette struct {
	names      []string
	palettes   map[string]*Palette
	modifiable map[string]*MutablePalette
	indices    map[string]int

	buffer  []color.RGBA
	height  int
	version uint64
}

// NewHardwarePalette returns an empty bank.
func NewHardwarePalette() *HardwarePalette {
	return &HardwarePalette{
		palettes:   make(map[string]*Palette),
		modifiable: make(map[string]*MutablePalette),
		indices:    make(map[string]int),
	}
}

// Contains reports whether name is registered.
func (h *HardwarePalette) Contains(name string) bool {
	_, ok := h.palettes[name]
	return ok
}

// GetPalette returns the registered (unmodified) colors of name.
func (h *HardwarePalette) GetPalette(name string) (Palette, error) {
	p, ok := h.palettes[name]
	if !ok {
		return Palette{}, fmt.Errorf("palette %q: %w", name, ErrUnknownPalette)
	}
	return *p, nil
}

// GetPaletteIndex returns the bank row of name.
func (h *HardwarePalette) GetPaletteIndex(name string) (int, error) {
	i, ok := h.indices[name]
	if !ok {
		return 0, fmt.Errorf("palette %q: %w", name, ErrUnknownPalette)
	}
	return i, nil
}

// AddPalette registers p under name. Palettes registered with allowModifiers
// are rewritten by every ApplyModifiers call; the rest are written once.
func (h *HardwarePalette) AddPalette(name string, p Palette, allowModifiers bool) error {
	if _, ok := h.palettes[name]; ok {
		return fmt.Errorf("palette %q: %w", name, ErrDuplicatePalette)
	}

	index := len(h.names)
	h.names = append(h.names, name)
	h.indices[name] = index
	base := p
	h.palettes[name] = &base

	if len(h.names) > h.height {
		h.height = nextPowerOfTwo(len(h.names))
		grown := make([]color.RGBA, h.height*PaletteSize)
		copy(grown, h.buffer)
		h.buffer = grown
	}

	if allowModifiers {
		h.modifiable[name] = &MutablePalette{colors: p}
	}
	h.copyToBuffer(index, &p)
	h.version++
	return nil
}

// ApplyModifiers resets every modifiable palette from its registered colors,
// runs mods over them in order and copies the result into the bank.
func (h *HardwarePalette) ApplyModifiers(mods []PaletteModifier) {
	for name, mp := range h.modifiable {
		mp.SetFromPalette(h.palettes[name])
	}

	// Modifiers get their own map so they cannot add or drop bank entries.
	view := make(map[string]*MutablePalette, len(h.modifiable))
	for name, mp := range h.modifiable {
		view[name] = mp
	}
	for _, m := range mods {
		m.AdjustPalette(view)
	}

	for _, name := range h.names {
		if mp, ok := h.modifiable[name]; ok {
			h.copyToBuffer(h.indices[name], &mp.colors)
		}
	}
	h.version++
}

// Names returns palette names in bank order.
func (h *HardwarePalette) Names() []string { return slices.Clone(h.names) }

// Rows returns the texture height of the bank.
func (h *HardwarePalette) Rows() int { return h.height }

// Row returns the current colors of bank row i. The slice aliases the bank
// and is only valid until the next ApplyModifiers.
func (h *HardwarePalette) Row(i int) []color.RGBA {
	return h.buffer[i*PaletteSize : (i+1)*PaletteSize]
}

// Version changes every time the bank contents change.
func (h *HardwarePalette) Version() uint64 { return h.version }

func (h *HardwarePalette) copyToBuffer(index int, p *Palette) {
	copy(h.buffer[index*PaletteSize:(index+1)*PaletteSize], p[:])
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
