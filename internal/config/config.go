// Package config loads the skirmish settings file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrInvalid is returned when a setting is out of range.
	ErrInvalid = errors.New("invalid config")
	// ErrUnknownKey is returned for keys the config does not define.
	ErrUnknownKey = errors.New("unknown config key")
)

// Config is the decoded settings file.
type Config struct {
	Window   Window    `toml:"window"`
	Render   Render    `toml:"render"`
	Map      Map       `toml:"map"`
	Debug    Debug     `toml:"debug"`
	Log      Log       `toml:"log"`
	Players  []Player  `toml:"player"`
	Palettes []Palette `toml:"palette"`
}

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type Render struct {
	TileSize       int     `toml:"tile_size"`
	Zoom           float32 `toml:"zoom"`
	MinZoom        float32 `toml:"min_zoom"`
	MaxZoom        float32 `toml:"max_zoom"`
	ShowRollovers  bool    `toml:"show_rollovers"`
	ShowShellmap   bool    `toml:"show_shellmap"`
	TerrainPalette string  `toml:"terrain_palette"`
}

// Map selects a bundled layout by file name, or a generated map when File
// is empty.
type Map struct {
	File    string `toml:"file"`
	Seed    uint64 `toml:"seed"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Terrain string `toml:"terrain"`
}

type Debug struct {
	Geometry      bool `toml:"geometry"`
	DisableShroud bool `toml:"disable_shroud"`
}

type Log struct {
	Level string `toml:"level"`
}

// Player is one side of the skirmish. Color is "#rrggbb".
type Player struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
	Local bool   `toml:"local"`
}

// Palette is an extra palette built from the base colors with its remap
// range recolored.
type Palette struct {
	Name       string `toml:"name"`
	Remap      string `toml:"remap"`
	Modifiable bool   `toml:"modifiable"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "Skirmish"},
		Render: Render{
			TileSize:       32,
			Zoom:           1,
			MinZoom:        0.5,
			MaxZoom:        3,
			ShowRollovers:  true,
			TerrainPalette: "terrain",
		},
		Map: Map{Seed: 1, Width: 48, Height: 32, Terrain: "temperate"},
		Log: Log{Level: "info"},
		Players: []Player{
			{Name: "Blue", Color: "#3c64ff", Local: true},
			{Name: "Red", Color: "#e03c28"},
		},
	}
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults and validates the result. A file
// that lists players replaces the default players.
func Parse(data string) (Config, error) {
	cfg := Default()
	cfg.Players = nil
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(names, ", "))
	}
	if !md.IsDefined("player") {
		cfg.Players = Default().Players
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Render.TileSize <= 0:
		return fmt.Errorf("%w: tile_size %d", ErrInvalid, c.Render.TileSize)
	case c.Render.MinZoom <= 0 || c.Render.MaxZoom < c.Render.MinZoom:
		return fmt.Errorf("%w: zoom limits %g..%g", ErrInvalid, c.Render.MinZoom, c.Render.MaxZoom)
	case c.Render.Zoom < c.Render.MinZoom || c.Render.Zoom > c.Render.MaxZoom:
		return fmt.Errorf("%w: zoom %g outside %g..%g", ErrInvalid, c.Render.Zoom, c.Render.MinZoom, c.Render.MaxZoom)
	case c.Render.TerrainPalette == "":
		return fmt.Errorf("%w: empty terrain_palette", ErrInvalid)
	case c.Map.File == "" && (c.Map.Width <= 0 || c.Map.Height <= 0):
		return fmt.Errorf("%w: map size %dx%d", ErrInvalid, c.Map.Width, c.Map.Height)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	local := 0
	seen := make(map[string]bool)
	for _, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("%w: player without a name", ErrInvalid)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalid, p.Name)
		}
		seen[p.Name] = true
		if _, err := ParseColor(p.Color); err != nil {
			return fmt.Errorf("player %q: %w", p.Name, err)
		}
		if p.Local {
			local++
		}
	}
	if local > 1 {
		return fmt.Errorf("%w: %d local players", ErrInvalid, local)
	}

	names := make(map[string]bool)
	for _, p := range c.Palettes {
		if p.Name == "" {
			return fmt.Errorf("%w: palette without a name", ErrInvalid)
		}
		if names[p.Name] {
			return fmt.Errorf("%w: duplicate palette %q", ErrInvalid, p.Name)
		}
		names[p.Name] = true
		if _, err := ParseColor(p.Remap); err != nil {
			return fmt.Errorf("palette %q: %w", p.Name, err)
		}
	}
	return nil
}

// SlogLevel returns the configured log level.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}

// ParseColor parses "#rrggbb" into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalid, s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalid, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
