package model

// Snapshot is a point-in-time copy of a game session.
//
// Slices are owned by the snapshot; mutating them never affects the engine.
type Snapshot struct {
	Tick       uint64     `json:"tick"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Snake      []Position `json:"snake"` // head first
	Food       Food       `json:"food"`
	Obstacles  []Position `json:"obstacles"`
	Score      int        `json:"score"`
	FoodEaten  int        `json:"food_eaten"`
	BonusTimer int        `json:"bonus_timer"`
	Running    bool       `json:"running"`
}

// Head returns the first snake segment, or the zero Position for an empty snake.
func (s Snapshot) Head() Position {
	if len(s.Snake) == 0 {
		return Position{}
	}
	return s.Snake[0]
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Snake = append([]Position(nil), s.Snake...)
	out.Obstacles = append([]Position(nil), s.Obstacles...)
	return out
}
