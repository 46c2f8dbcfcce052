package core

import (
	"testing"

	"github.com/signalsfoundry/gridsnake/model"
)

// seqRand replays a fixed sequence of values, reduced modulo n.
type seqRand struct {
	vals []int
	i    int
}

func (s *seqRand) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func smallConfig() Config {
	return Config{
		Width:         10,
		Height:        8,
		ObstacleCount: 0,
		BonusInterval: 100,
		BonusDuration: 4,
		SnakeStart:    model.Position{X: 2, Y: 2},
		FoodStart:     model.Position{X: 5, Y: 5},
		ObstacleSeed:  model.Position{X: 9, Y: 7},
	}
}

func newTestEngine(t *testing.T, cfg Config, vals ...int) *Engine {
	t.Helper()
	e, err := Initialize(cfg, &seqRand{vals: vals})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e
}

func mustAdvance(t *testing.T, e *Engine, dirs ...model.Direction) TickOutcome {
	t.Helper()
	var out TickOutcome
	for _, d := range dirs {
		var err error
		out, err = e.Advance(d)
		if err != nil {
			t.Fatalf("Advance(%v) at tick %d: %v", d, e.Ticks(), err)
		}
	}
	return out
}
