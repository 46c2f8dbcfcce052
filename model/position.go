package model

// Position is a grid cell. X grows to the right, Y grows downwards.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p moved by (dx, dy) without wrapping.
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Wrap folds p back onto a width x height torus.
func (p Position) Wrap(width, height int) Position {
	return Position{X: wrap(p.X, width), Y: wrap(p.Y, height)}
}

// In reports whether p lies inside [0,width) x [0,height).
func (p Position) In(width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Food is the single consumable on the board.
type Food struct {
	Position
	IsBonus bool `json:"bonus"`
}
