package world

// Shroud tracks which cells a player has explored and currently sees.
type Shroud struct {
	width, height int
	explored      []bool
	visible       []bool
	disabled      bool
}

// NewShroud creates a fully shrouded grid matching m.
func NewShroud(m *Map) *Shroud {
	n := m.Width * m.Height
	return &Shroud{
		width:    m.Width,
		height:   m.Height,
		explored: make([]bool, n),
		visible:  make([]bool, n),
	}
}

// Disable reveals everything (observer / developer view).
func (s *Shroud) Disable(disabled bool) { s.disabled = disabled }

// ResetVisibility clears current vision; explored state is kept.
func (s *Shroud) ResetVisibility() {
	clear(s.visible)
}

// Reveal marks every cell within radius cells of center as visible and explored.
func (s *Shroud) Reveal(center CPos, radius int) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			x, y := center.X+dx, center.Y+dy
			if x < 0 || x >= s.width || y < 0 || y >= s.height {
				continue
			}
			i := y*s.width + x
			s.visible[i] = true
			s.explored[i] = true
		}
	}
}

// IsExplored reports whether c has ever been seen.
func (s *Shroud) IsExplored(c CPos) bool {
	if s.disabled {
		return true
	}
	if c.X < 0 || c.X >= s.width || c.Y < 0 || c.Y >= s.height {
		return false
	}
	return s.explored[c.Y*s.width+c.X]
}

// IsVisible reports whether c is currently in vision.
func (s *Shroud) IsVisible(c CPos) bool {
	if s.disabled {
		return true
	}
	if c.X < 0 || c.X >= s.width || c.Y < 0 || c.Y >= s.height {
		return false
	}
	return s.visible[c.Y*s.width+c.X]
}
