package render

// PaletteReference is an immutable handle to a registered palette. Any number
// of renderables may share one; the bank stays the sole owner of the colors.
type PaletteReference struct {
	name    string
	index   int
	palette Palette
}

// Name returns the palette name.
func (r *PaletteReference) Name() string { return r.name }

// Index returns the bank row holding this palette.
func (r *PaletteReference) Index() int { return r.index }

// Palette returns the registered (unmodified) colors.
func (r *PaletteReference) Palette() Palette { return r.palette }

// PaletteRegistry resolves palette names to cached references.
type PaletteRegistry struct {
	bank PaletteBank
	refs map[string]*PaletteReference
}

// NewPaletteRegistry wraps bank.
func NewPaletteRegistry(bank PaletteBank) *PaletteRegistry {
	return &PaletteRegistry{
		bank: bank,
		refs: make(map[string]*PaletteReference),
	}
}

// Bank returns the underlying palette bank.
func (r *PaletteRegistry) Bank() PaletteBank { return r.bank }

// Palette returns the reference for name, resolving it on first use.
// Unknown names fail with ErrUnknownPalette and are not cached.
func (r *PaletteRegistry) Palette(name string) (*PaletteReference, error) {
	if ref, ok := r.refs[name]; ok {
		return ref, nil
	}
	pal, err := r.bank.GetPalette(name)
	if err != nil {
		return nil, err
	}
	index, err := r.bank.GetPaletteIndex(name)
	if err != nil {
		return nil, err
	}
	ref := &PaletteReference{name: name, index: index, palette: pal}
	r.refs[name] = ref
	return ref, nil
}

// AddPalette registers a new named palette in the bank.
func (r *PaletteRegistry) AddPalette(name string, p Palette, allowModifiers bool) error {
	if err := r.bank.AddPalette(name, p, allowModifiers); err != nil {
		return err
	}
	Logger().Info("palette registered", "name", name, "modifiable", allowModifiers)
	return nil
}

// Refresh reapplies mods to the bank and pushes it to the surface.
func (r *PaletteRegistry) Refresh(mods []PaletteModifier, s Surface) {
	r.bank.ApplyModifiers(mods)
	s.SetPalette(r.bank)
}
