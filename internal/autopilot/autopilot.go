// Package autopilot implements a greedy steering policy for headless games.
package autopilot

import (
	"github.com/signalsfoundry/gridsnake/core"
	"github.com/signalsfoundry/gridsnake/model"
)

// order is the tie-break order between equally good moves.
var order = [...]model.Direction{model.DirUp, model.DirRight, model.DirDown, model.DirLeft}

// Next picks the heading for the coming tick. It never reverses heading,
// skips moves that would end the game when a safe one exists, and among safe
// moves takes the one closest to the food on the torus. With no safe move it
// keeps heading.
func Next(snap model.Snapshot, heading model.Direction) model.Direction {
	if len(snap.Snake) == 0 {
		return heading
	}
	head := snap.Head()

	best := model.DirNone
	bestDist := 0
	for _, d := range order {
		if heading.Valid() && d == heading.Opposite() {
			continue
		}
		next := step(head, d, snap.Width, snap.Height)
		if Lethal(snap, next) {
			continue
		}
		dist := Distance(next, snap.Food.Position, snap.Width, snap.Height)
		if best == model.DirNone || dist < bestDist {
			best, bestDist = d, dist
		}
	}

	if best != model.DirNone {
		return best
	}
	if heading.Valid() {
		return heading
	}
	return order[0]
}

// Lethal reports whether moving the head onto p would end the game.
// Food is eaten before collisions are checked, so the food cell is never lethal.
func Lethal(snap model.Snapshot, p model.Position) bool {
	if p == snap.Food.Position {
		return false
	}
	return core.Collision(snap.Snake, snap.Obstacles, p.X, p.Y)
}

// Distance is the Manhattan distance between a and b on a width x height torus.
func Distance(a, b model.Position, width, height int) int {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	if width > 0 && dx > width/2 {
		dx = width - dx
	}
	if height > 0 && dy > height/2 {
		dy = height - dy
	}
	return dx + dy
}

func step(p model.Position, d model.Direction, width, height int) model.Position {
	dx, dy := d.Delta()
	return p.Add(dx, dy).Wrap(width, height)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
