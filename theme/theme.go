package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	InScale    rune // ● pitch-class produced by the scale
	OutOfScale rune // · pitch-class never produced
	Root       rune // ◆ root pitch-class
	Cursor     rune // ▶ list cursor
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			InScale:    '●',
			OutOfScale: '·',
			Root:       '◆',
			Cursor:     '▶',
		},
	}
}

// Default uses the embedded palette.
func Default() *Theme {
	return New(DefaultPalette())
}

// Color roles mapped to palette entries
const (
	RoleBG = iota
	RoleSurface
	RoleMuted
	RoleFG
	RoleAccent
	RoleCursor
	RoleActive
	RoleWarning
	RoleSuccess
)

func (t *Theme) role(i int) lipgloss.Color {
	return lipgloss.Color(t.Palette.Index(i).Hex())
}

func (t *Theme) BG() lipgloss.Color      { return t.role(RoleBG) }
func (t *Theme) FG() lipgloss.Color      { return t.role(RoleFG) }
func (t *Theme) Accent() lipgloss.Color  { return t.role(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color   { return t.role(RoleMuted) }
func (t *Theme) Active() lipgloss.Color  { return t.role(RoleActive) }
func (t *Theme) Cursor() lipgloss.Color  { return t.role(RoleCursor) }
func (t *Theme) Warning() lipgloss.Color { return t.role(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.role(RoleSuccess) }
