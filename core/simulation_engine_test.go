package core

import (
	"errors"
	"reflect"
	"testing"

	"github.com/signalsfoundry/gridsnake/model"
)

func TestInitializeDefaultLayout(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), 1, 2, 3, 4, 5, 6)

	if got, want := e.Snake(), []model.Position{{X: 5, Y: 5}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Snake() = %v, want %v", got, want)
	}
	if got := e.Food(); got.Position != (model.Position{X: 10, Y: 10}) || got.IsBonus {
		t.Fatalf("Food() = %+v, want ordinary food at (10,10)", got)
	}
	wantObstacles := []model.Position{{X: 20, Y: 20}, {X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}
	if got := e.Obstacles(); !reflect.DeepEqual(got, wantObstacles) {
		t.Fatalf("Obstacles() = %v, want %v", got, wantObstacles)
	}
	if e.Score() != 0 || e.FoodEaten() != 0 || !e.Running() {
		t.Fatalf("score=%d eaten=%d running=%v, want 0/0/true", e.Score(), e.FoodEaten(), e.Running())
	}
	if e.BonusTimer() != DefaultBonusDuration {
		t.Fatalf("BonusTimer() = %d, want %d", e.BonusTimer(), DefaultBonusDuration)
	}
}

func TestInitializeAllowsDuplicateObstacles(t *testing.T) {
	cfg := smallConfig()
	cfg.ObstacleCount = 3
	// Every random obstacle lands on the snake start cell.
	e := newTestEngine(t, cfg, 2, 2)

	obstacles := e.Obstacles()
	if len(obstacles) != 4 {
		t.Fatalf("len(Obstacles()) = %d, want 4", len(obstacles))
	}
	for _, o := range obstacles[1:] {
		if o != cfg.SnakeStart {
			t.Fatalf("obstacle %v, want duplicate of snake start %v", o, cfg.SnakeStart)
		}
	}
}

func TestAdvanceWrapsAroundEdges(t *testing.T) {
	cases := []struct {
		name  string
		start model.Position
		dir   model.Direction
		want  model.Position
	}{
		{"right edge", model.Position{X: 9, Y: 3}, model.DirRight, model.Position{X: 0, Y: 3}},
		{"left edge", model.Position{X: 0, Y: 3}, model.DirLeft, model.Position{X: 9, Y: 3}},
		{"top edge", model.Position{X: 4, Y: 0}, model.DirUp, model.Position{X: 4, Y: 7}},
		{"bottom edge", model.Position{X: 4, Y: 7}, model.DirDown, model.Position{X: 4, Y: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.SnakeStart = tc.start
			e := newTestEngine(t, cfg)

			out := mustAdvance(t, e, tc.dir)
			if out.Collided || !e.Running() {
				t.Fatalf("unexpected collision wrapping from %v", tc.start)
			}
			if got := e.Head(); got != tc.want {
				t.Fatalf("head = %v, want %v", got, tc.want)
			}
			if len(e.Snake()) != 1 {
				t.Fatalf("len(snake) = %d, want 1", len(e.Snake()))
			}
		})
	}
}

func TestAdvanceEatsOrdinaryFood(t *testing.T) {
	cfg := smallConfig()
	cfg.SnakeStart = model.Position{X: 4, Y: 5}
	e := newTestEngine(t, cfg, 7, 1)

	out := mustAdvance(t, e, model.DirRight)
	if !out.Ate || out.AteBonus || out.ScoreDelta != FoodPoints {
		t.Fatalf("outcome = %+v, want ordinary food eaten", out)
	}
	if e.Score() != 10 || e.FoodEaten() != 1 {
		t.Fatalf("score=%d eaten=%d, want 10/1", e.Score(), e.FoodEaten())
	}
	if got, want := e.Snake(), []model.Position{{X: 5, Y: 5}, {X: 4, Y: 5}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Snake() = %v, want %v", got, want)
	}
	if got := e.Food(); got.Position != (model.Position{X: 7, Y: 1}) || got.IsBonus {
		t.Fatalf("Food() = %+v, want ordinary food at (7,1)", got)
	}
}

// eatAlongRow starts at (0,0) with food at (1,0) and feeds the snake along row 0.
func eatAlongRow(t *testing.T, cfg Config, vals ...int) *Engine {
	t.Helper()
	cfg.SnakeStart = model.Position{X: 0, Y: 0}
	cfg.FoodStart = model.Position{X: 1, Y: 0}
	return newTestEngine(t, cfg, vals...)
}

func TestBonusFoodCycle(t *testing.T) {
	cfg := smallConfig()
	cfg.BonusInterval = 3
	e := eatAlongRow(t, cfg, 2, 0, 3, 0, 4, 0, 8, 6)

	mustAdvance(t, e, model.DirRight, model.DirRight)
	if e.FoodEaten() != cfg.BonusInterval-1 || e.Food().IsBonus {
		t.Fatalf("after two foods: eaten=%d bonus=%v", e.FoodEaten(), e.Food().IsBonus)
	}

	out := mustAdvance(t, e, model.DirRight)
	if e.FoodEaten() != cfg.BonusInterval {
		t.Fatalf("FoodEaten() = %d, want %d", e.FoodEaten(), cfg.BonusInterval)
	}
	if !out.BonusSpawned || !e.Food().IsBonus || e.Food().Position != (model.Position{X: 4, Y: 0}) {
		t.Fatalf("food = %+v (spawned=%v), want bonus at (4,0)", e.Food(), out.BonusSpawned)
	}

	before := len(e.Snake())
	out = mustAdvance(t, e, model.DirRight)
	if !out.AteBonus || out.ScoreDelta != BonusFoodPoints {
		t.Fatalf("outcome = %+v, want bonus eaten", out)
	}
	if e.Score() != 3*FoodPoints+BonusFoodPoints {
		t.Fatalf("Score() = %d, want %d", e.Score(), 3*FoodPoints+BonusFoodPoints)
	}
	if e.FoodEaten() != cfg.BonusInterval {
		t.Fatalf("bonus food must not count toward the interval, FoodEaten() = %d", e.FoodEaten())
	}
	if len(e.Snake()) != before+1 {
		t.Fatalf("len(snake) = %d, want %d", len(e.Snake()), before+1)
	}
	if f := e.Food(); f.IsBonus || f.Position != (model.Position{X: 8, Y: 6}) {
		t.Fatalf("Food() = %+v, want ordinary food relocated to (8,6)", f)
	}
	if e.BonusTimer() != cfg.BonusDuration {
		t.Fatalf("BonusTimer() = %d, want %d", e.BonusTimer(), cfg.BonusDuration)
	}
}

func TestBonusFoodExpires(t *testing.T) {
	cfg := smallConfig()
	cfg.BonusInterval = 1
	cfg.BonusDuration = 2
	e := eatAlongRow(t, cfg, 5, 5, 6, 3)

	mustAdvance(t, e, model.DirRight)
	if !e.Food().IsBonus {
		t.Fatalf("expected bonus food after first meal")
	}

	mustAdvance(t, e, model.DirDown)
	if e.BonusTimer() != 1 || !e.Food().IsBonus {
		t.Fatalf("timer=%d bonus=%v, want 1/true", e.BonusTimer(), e.Food().IsBonus)
	}

	score := e.Score()
	out := mustAdvance(t, e, model.DirDown)
	if !out.BonusExpired {
		t.Fatalf("outcome = %+v, want BonusExpired", out)
	}
	if f := e.Food(); f.IsBonus || f.Position != (model.Position{X: 6, Y: 3}) {
		t.Fatalf("Food() = %+v, want ordinary food relocated to (6,3)", f)
	}
	if e.BonusTimer() != cfg.BonusDuration {
		t.Fatalf("BonusTimer() = %d, want reset to %d", e.BonusTimer(), cfg.BonusDuration)
	}
	if e.Score() != score {
		t.Fatalf("expiry changed score from %d to %d", score, e.Score())
	}
}

func TestBonusTimerIgnoredForOrdinaryFood(t *testing.T) {
	e := newTestEngine(t, smallConfig())
	mustAdvance(t, e, model.DirUp, model.DirUp, model.DirLeft)
	if e.BonusTimer() != smallConfig().BonusDuration {
		t.Fatalf("BonusTimer() = %d, want untouched %d", e.BonusTimer(), smallConfig().BonusDuration)
	}
}

func TestSelfCollisionLeavesStateUnchanged(t *testing.T) {
	e := eatAlongRow(t, smallConfig(), 2, 0, 3, 0, 4, 0, 8, 6)
	mustAdvance(t, e, model.DirRight, model.DirRight, model.DirRight, model.DirRight)
	if len(e.Snake()) != 5 {
		t.Fatalf("len(snake) = %d, want 5", len(e.Snake()))
	}
	mustAdvance(t, e, model.DirDown, model.DirLeft)

	before := e.Snapshot()
	out := mustAdvance(t, e, model.DirUp)
	if !out.Collided || e.Running() {
		t.Fatalf("outcome = %+v running=%v, want collision", out, e.Running())
	}
	after := e.Snapshot()
	if !reflect.DeepEqual(before.Snake, after.Snake) || before.Food != after.Food || before.Score != after.Score {
		t.Fatalf("lethal tick changed state:\nbefore %+v\nafter  %+v", before, after)
	}

	if _, err := e.Advance(model.DirRight); !errors.Is(err, ErrGameOver) {
		t.Fatalf("Advance after game over = %v, want ErrGameOver", err)
	}
	if !reflect.DeepEqual(after, e.Snapshot()) {
		t.Fatalf("Advance after game over mutated state")
	}
}

func TestMovingOntoCurrentTailIsFatal(t *testing.T) {
	cfg := smallConfig()
	cfg.SnakeStart = model.Position{X: 0, Y: 1}
	cfg.FoodStart = model.Position{X: 0, Y: 0}
	e := newTestEngine(t, cfg, 1, 0, 1, 1, 8, 6)

	mustAdvance(t, e, model.DirUp, model.DirRight, model.DirDown)
	want := []model.Position{{X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}}
	if got := e.Snake(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Snake() = %v, want %v", got, want)
	}

	out := mustAdvance(t, e, model.DirLeft)
	if !out.Collided || e.Running() {
		t.Fatalf("stepping onto the tail cell must be fatal, outcome = %+v", out)
	}
}

func TestObstacleCollision(t *testing.T) {
	cfg := smallConfig()
	cfg.ObstacleSeed = model.Position{X: 3, Y: 2}
	e := newTestEngine(t, cfg)

	out := mustAdvance(t, e, model.DirRight)
	if !out.Collided || e.Running() {
		t.Fatalf("outcome = %+v, want obstacle collision", out)
	}
	if e.Head() != cfg.SnakeStart {
		t.Fatalf("head moved to %v on a lethal tick", e.Head())
	}
}

func TestFoodOnObstacleIsEaten(t *testing.T) {
	cfg := smallConfig()
	cfg.ObstacleSeed = model.Position{X: 3, Y: 2}
	cfg.FoodStart = model.Position{X: 3, Y: 2}
	e := newTestEngine(t, cfg, 6, 6)

	out := mustAdvance(t, e, model.DirRight)
	if !out.Ate || out.Collided || !e.Running() {
		t.Fatalf("outcome = %+v, want food eaten on top of obstacle", out)
	}
}

func TestFoodMaySpawnOnSnake(t *testing.T) {
	cfg := smallConfig()
	cfg.SnakeStart = model.Position{X: 4, Y: 5}
	// The relocated food lands on the old head, now the second segment.
	e := newTestEngine(t, cfg, 4, 5)

	mustAdvance(t, e, model.DirRight)
	if f := e.Food().Position; f != (model.Position{X: 4, Y: 5}) || !e.Collides(f.X, f.Y) {
		t.Fatalf("food at %v, want it on the snake body", f)
	}
	out := mustAdvance(t, e, model.DirUp)
	if out.Collided || !e.Running() {
		t.Fatalf("food on the body must not break the game, outcome = %+v", out)
	}
}

func TestDirNoneCollidesWithOwnHead(t *testing.T) {
	e := newTestEngine(t, smallConfig())
	out := mustAdvance(t, e, model.DirNone)
	if !out.Collided || e.Running() {
		t.Fatalf("outcome = %+v, want collision when the head does not move", out)
	}
}

func TestTickListenersSeeEveryTick(t *testing.T) {
	cfg := smallConfig()
	cfg.ObstacleSeed = model.Position{X: 2, Y: 0}
	e := newTestEngine(t, cfg)

	var seen []TickOutcome
	e.RegisterTickListener(func(out TickOutcome) { seen = append(seen, out) })
	e.RegisterTickListener(nil)

	mustAdvance(t, e, model.DirUp, model.DirUp)
	if len(seen) != 2 || seen[0].Tick != 1 || seen[1].Tick != 2 || !seen[1].Collided {
		t.Fatalf("listener saw %+v, want ticks 1 and 2 with the second colliding", seen)
	}
	_, _ = e.Advance(model.DirUp)
	if len(seen) != 2 {
		t.Fatalf("listener notified after game over")
	}
}

func TestCollisionQuery(t *testing.T) {
	snake := []model.Position{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 3}}
	obstacles := []model.Position{{X: 5, Y: 5}}

	cases := []struct {
		x, y int
		want bool
	}{
		{1, 1, true},
		{1, 3, true},
		{5, 5, true},
		{2, 2, false},
		{0, 0, false},
	}
	for _, tc := range cases {
		if got := Collision(snake, obstacles, tc.x, tc.y); got != tc.want {
			t.Fatalf("Collision(%d,%d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
	if Collision(nil, nil, 0, 0) {
		t.Fatalf("empty board must not collide")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(t, smallConfig())
	snap := e.Snapshot()
	snap.Snake[0].X = 99
	snap.Obstacles[0].X = 99
	if e.Head().X == 99 || e.Obstacles()[0].X == 99 {
		t.Fatalf("mutating a snapshot leaked into the engine")
	}
}

func TestDeterministicTrajectory(t *testing.T) {
	moves := []model.Direction{
		model.DirRight, model.DirRight, model.DirDown, model.DirDown, model.DirLeft,
		model.DirDown, model.DirRight, model.DirRight, model.DirUp, model.DirRight,
	}

	run := func() []model.Snapshot {
		e, err := Initialize(DefaultConfig(), NewRandomSource(42))
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		var trace []model.Snapshot
		for i := 0; i < 200 && e.Running(); i++ {
			if _, err := e.Advance(moves[i%len(moves)]); err != nil {
				t.Fatalf("Advance: %v", err)
			}
			trace = append(trace, e.Snapshot())
		}
		return trace
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical seed and inputs produced different trajectories")
	}
}

func TestInvariantsUnderRandomPlay(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		cfg := DefaultConfig()
		cfg.BonusInterval = 2
		cfg.BonusDuration = 5
		e, err := Initialize(cfg, NewRandomSource(seed))
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		steer := NewRandomSource(seed + 1000)
		heading := model.DirRight

		for i := 0; i < 2000 && e.Running(); i++ {
			if d := model.Direction(steer.Intn(4) + 1); d != heading.Opposite() {
				heading = d
			}
			prevScore, prevLen := e.Score(), len(e.Snake())

			out, err := e.Advance(heading)
			if err != nil {
				t.Fatalf("seed %d: Advance: %v", seed, err)
			}

			delta := e.Score() - prevScore
			switch {
			case out.Ate && delta != FoodPoints && delta != BonusFoodPoints:
				t.Fatalf("seed %d: eating scored %d", seed, delta)
			case !out.Ate && delta != 0:
				t.Fatalf("seed %d: non-eating tick scored %d", seed, delta)
			}

			n := len(e.Snake())
			switch {
			case n < 1:
				t.Fatalf("seed %d: empty snake", seed)
			case out.Ate && n != prevLen+1:
				t.Fatalf("seed %d: eating grew %d -> %d", seed, prevLen, n)
			case !out.Ate && n != prevLen:
				t.Fatalf("seed %d: moving changed length %d -> %d", seed, prevLen, n)
			}
			for _, s := range e.Snake() {
				if !s.In(e.Width(), e.Height()) {
					t.Fatalf("seed %d: segment %v outside grid", seed, s)
				}
			}
		}
	}
}
