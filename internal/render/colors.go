package render

import "image/color"

// CGA 16-color indices. Index 0 is transparent in every palette, so CGA black
// lives at ColorOpaqueBlack instead.
const (
	ColorTransparent  = 0
	ColorBlue         = 1
	ColorGreen        = 2
	ColorCyan         = 3
	ColorRed          = 4
	ColorMagenta      = 5
	ColorBrown        = 6
	ColorLightGray    = 7
	ColorDarkGray     = 8
	ColorLightBlue    = 9
	ColorLightGreen   = 10
	ColorLightCyan    = 11
	ColorLightRed     = 12
	ColorLightMagenta = 13
	ColorYellow       = 14
	ColorWhite        = 15
	ColorOpaqueBlack  = 16
)

// Remap range: unit art uses these indices for team colors.
const (
	RemapStart = 32
	RemapSize  = 16
)

// ColorShadow is a translucent black used for shadows and fog.
const ColorShadow = 48

// Water ramp: animated by palette rotation.
const (
	WaterStart = 49
	WaterSize  = 6
)

// CGA contains the classic CGA 16-color palette.
var CGA = [16]color.RGBA{
	{0, 0, 0, 255},       // 0: Black
	{0, 0, 170, 255},     // 1: Blue
	{0, 170, 0, 255},     // 2: Green
	{0, 170, 170, 255},   // 3: Cyan
	{170, 0, 0, 255},     // 4: Red
	{170, 0, 170, 255},   // 5: Magenta
	{170, 85, 0, 255},    // 6: Brown
	{170, 170, 170, 255}, // 7: Light Gray
	{85, 85, 85, 255},    // 8: Dark Gray
	{85, 85, 255, 255},   // 9: Light Blue
	{85, 255, 85, 255},   // 10: Light Green
	{85, 255, 255, 255},  // 11: Light Cyan
	{255, 85, 85, 255},   // 12: Light Red
	{255, 85, 255, 255},  // 13: Light Magenta
	{255, 255, 85, 255},  // 14: Yellow
	{255, 255, 255, 255}, // 15: White
}

// BasePalette builds the default 256-color palette: CGA colors, an opaque
// black, a gray ramp, a red remap ramp, a shadow entry and a water ramp.
func BasePalette() Palette {
	var p Palette
	for i := 1; i < len(CGA); i++ {
		p[i] = CGA[i]
	}
	p[ColorOpaqueBlack] = color.RGBA{0, 0, 0, 255}
	for i := 17; i < RemapStart; i++ {
		v := uint8((i - 16) * 16)
		p[i] = color.RGBA{v, v, v, 255}
	}
	RemapRamp(&p, color.RGBA{200, 24, 24, 255})
	p[ColorShadow] = color.RGBA{0, 0, 0, 128}
	for i := 0; i < WaterSize; i++ {
		p[WaterStart+i] = color.RGBA{0, uint8(40 + 16*i), uint8(150 + 20*i), 255}
	}
	return p
}

// RemapRamp writes a dark-to-light ramp of base into the remap range.
func RemapRamp(p *Palette, base color.RGBA) {
	for i := 0; i < RemapSize; i++ {
		// 0.35 .. 1.25 of the base color
		f := 0.35 + 0.9*float64(i)/float64(RemapSize-1)
		p[RemapStart+i] = color.RGBA{scale8(base.R, f), scale8(base.G, f), scale8(base.B, f), 255}
	}
}

func scale8(v uint8, f float64) uint8 {
	x := float64(v) * f
	if x > 255 {
		return 255
	}
	return uint8(x)
}
