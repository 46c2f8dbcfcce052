package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/signalsfoundry/gridsnake/model"
)

// CellWidth is the number of terminal columns used per grid cell, so cells
// look roughly square.
const CellWidth = 2

// Glyphs drawn for each kind of cell.
const (
	GlyphObstacle = '#'
	GlyphBody     = 'o'
	GlyphHead     = '@'
	GlyphFood     = '*'
	GlyphBonus    = '$'
)

var (
	styleBackground = tcell.StyleDefault
	styleObstacle   = tcell.StyleDefault.Foreground(tcell.ColorGray).Bold(true)
	styleBody       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHead       = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleFood       = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleBonus      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleGameOver   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Renderer draws snapshots onto a tcell screen. The grid occupies the top
// rows; a status line sits directly below it.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer wraps screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw renders snap and shows the frame.
func (r *Renderer) Draw(snap model.Snapshot) {
	r.screen.SetStyle(styleBackground)
	r.screen.Clear()

	for _, p := range snap.Obstacles {
		r.cell(p, GlyphObstacle, styleObstacle)
	}
	for i := len(snap.Snake) - 1; i >= 1; i-- {
		r.cell(snap.Snake[i], GlyphBody, styleBody)
	}
	if len(snap.Snake) > 0 {
		r.cell(snap.Snake[0], GlyphHead, styleHead)
	}
	if snap.Food.IsBonus {
		r.cell(snap.Food.Position, GlyphBonus, styleBonus)
	} else {
		r.cell(snap.Food.Position, GlyphFood, styleFood)
	}

	r.text(0, snap.Height, StatusLine(snap), styleStatus)
	r.screen.Show()
}

// DrawGameOver clears the screen and centres the final score.
func (r *Renderer) DrawGameOver(score int) {
	r.screen.SetStyle(styleBackground)
	r.screen.Clear()

	w, h := r.screen.Size()
	title := "Game Over"
	line := fmt.Sprintf("Score: %d", score)
	r.text((w-len(title))/2, h/2-1, title, styleGameOver)
	r.text((w-len(line))/2, h/2, line, styleStatus)
	r.screen.Show()
}

// StatusLine formats the text shown under the grid.
func StatusLine(snap model.Snapshot) string {
	s := fmt.Sprintf("Score: %d  Length: %d", snap.Score, len(snap.Snake))
	if snap.Food.IsBonus {
		s += fmt.Sprintf("  Bonus: %d", snap.BonusTimer)
	}
	return s
}

func (r *Renderer) cell(p model.Position, glyph rune, style tcell.Style) {
	x := p.X * CellWidth
	for i := 0; i < CellWidth; i++ {
		r.screen.SetContent(x+i, p.Y, glyph, nil, style)
	}
}

func (r *Renderer) text(x, y int, s string, style tcell.Style) {
	if x < 0 {
		x = 0
	}
	for i, ch := range []rune(s) {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}
