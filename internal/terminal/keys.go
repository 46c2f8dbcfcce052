// Package terminal renders games on a tcell screen and maps key presses to
// steering input.
package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/signalsfoundry/gridsnake/model"
)

// KeyDirection maps arrow keys, WASD and HJKL to a heading.
func KeyDirection(ev *tcell.EventKey) (model.Direction, bool) {
	if ev == nil {
		return model.DirNone, false
	}
	switch ev.Key() {
	case tcell.KeyUp:
		return model.DirUp, true
	case tcell.KeyDown:
		return model.DirDown, true
	case tcell.KeyLeft:
		return model.DirLeft, true
	case tcell.KeyRight:
		return model.DirRight, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W', 'k', 'K':
			return model.DirUp, true
		case 's', 'S', 'j', 'J':
			return model.DirDown, true
		case 'a', 'A', 'h', 'H':
			return model.DirLeft, true
		case 'd', 'D', 'l', 'L':
			return model.DirRight, true
		}
	}
	return model.DirNone, false
}

// IsQuit reports whether ev is Esc, Ctrl-C or q.
func IsQuit(ev *tcell.EventKey) bool {
	if ev == nil {
		return false
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// PollInput reads screen events until quit is pressed or the screen is
// finalised. Steering keys are passed to steer; quit runs at most once.
func PollInput(screen tcell.Screen, steer func(model.Direction), quit func()) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if IsQuit(ev) {
				if quit != nil {
					quit()
				}
				return
			}
			if d, ok := KeyDirection(ev); ok && steer != nil {
				steer(d)
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}
