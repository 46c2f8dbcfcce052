package core

import "github.com/signalsfoundry/gridsnake/model"

// Collision reports whether (x, y) is an obstacle or any current snake segment.
//
// The body is checked as it is before the move, so the tail cell that would be
// vacated on this tick still counts.
func Collision(snake, obstacles []model.Position, x, y int) bool {
	p := model.Position{X: x, Y: y}
	for _, o := range obstacles {
		if o == p {
			return true
		}
	}
	for _, s := range snake {
		if s == p {
			return true
		}
	}
	return false
}
