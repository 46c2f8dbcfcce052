package core

import (
	"fmt"

	"github.com/signalsfoundry/gridsnake/model"
)

// TickOutcome describes what a single Advance did.
type TickOutcome struct {
	Tick uint64
	// Head is the candidate head cell for this tick, after wrapping.
	Head model.Position

	Ate          bool
	AteBonus     bool
	BonusSpawned bool
	BonusExpired bool
	Collided     bool
	ScoreDelta   int
}

// Engine owns one game session: snake, food, obstacles, score and timers.
// It is not safe for concurrent use.
type Engine struct {
	cfg Config
	rng RandomSource

	snake      []model.Position // head first
	food       model.Food
	obstacles  []model.Position
	score      int
	foodEaten  int
	bonusTimer int
	running    bool
	ticks      uint64

	tickListeners []func(TickOutcome)
}

// Initialize validates cfg and builds the starting state: a one-segment snake,
// ordinary food at cfg.FoodStart, and cfg.ObstacleSeed plus cfg.ObstacleCount
// uniformly random obstacles. Obstacles are not deduplicated against anything.
func Initialize(cfg Config, rng RandomSource) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}

	e := &Engine{
		cfg:        cfg,
		rng:        rng,
		snake:      []model.Position{cfg.SnakeStart},
		food:       model.Food{Position: cfg.FoodStart},
		obstacles:  make([]model.Position, 0, cfg.ObstacleCount+1),
		bonusTimer: cfg.BonusDuration,
		running:    true,
	}
	e.obstacles = append(e.obstacles, cfg.ObstacleSeed)
	for i := 0; i < cfg.ObstacleCount; i++ {
		e.obstacles = append(e.obstacles, e.randomPosition())
	}
	return e, nil
}

// RegisterTickListener adds fn to the listeners notified after every simulated tick.
func (e *Engine) RegisterTickListener(fn func(TickOutcome)) {
	if fn == nil {
		return
	}
	e.tickListeners = append(e.tickListeners, fn)
}

// Advance simulates one tick heading in dir.
//
// Food is checked before collisions, so food lying on an obstacle or on the body
// is eaten rather than fatal. A lethal step leaves snake and food untouched and
// ends the game. Once the game is over Advance returns ErrGameOver and changes nothing.
func (e *Engine) Advance(dir model.Direction) (TickOutcome, error) {
	if !e.running {
		return TickOutcome{Tick: e.ticks}, ErrGameOver
	}

	e.ticks++
	dx, dy := dir.Delta()
	head := e.snake[0].Add(dx, dy).Wrap(e.cfg.Width, e.cfg.Height)
	out := TickOutcome{Tick: e.ticks, Head: head}

	if head == e.food.Position {
		e.snake = prepend(e.snake, head)
		out.Ate = true
		if e.food.IsBonus {
			out.AteBonus = true
			out.ScoreDelta = BonusFoodPoints
			e.bonusTimer = e.cfg.BonusDuration
			e.relocateFood(false)
		} else {
			out.ScoreDelta = FoodPoints
			e.foodEaten++
			out.BonusSpawned = e.foodEaten%e.cfg.BonusInterval == 0
			e.relocateFood(out.BonusSpawned)
		}
		e.score += out.ScoreDelta
		e.notify(out)
		return out, nil
	}

	if Collision(e.snake, e.obstacles, head.X, head.Y) {
		e.running = false
		out.Collided = true
		e.notify(out)
		return out, nil
	}

	e.snake = prepend(e.snake, head)
	e.snake = e.snake[:len(e.snake)-1]

	if e.food.IsBonus {
		e.bonusTimer--
		if e.bonusTimer <= 0 {
			out.BonusExpired = true
			e.bonusTimer = e.cfg.BonusDuration
			e.relocateFood(false)
		}
	}

	e.notify(out)
	return out, nil
}

// Collides reports whether (x, y) hits an obstacle or the current body.
func (e *Engine) Collides(x, y int) bool {
	return Collision(e.snake, e.obstacles, x, y)
}

func (e *Engine) Snake() []model.Position     { return append([]model.Position(nil), e.snake...) }
func (e *Engine) Obstacles() []model.Position { return append([]model.Position(nil), e.obstacles...) }
func (e *Engine) Head() model.Position        { return e.snake[0] }
func (e *Engine) Length() int                 { return len(e.snake) }
func (e *Engine) Food() model.Food            { return e.food }
func (e *Engine) Score() int                  { return e.score }
func (e *Engine) FoodEaten() int              { return e.foodEaten }
func (e *Engine) BonusTimer() int             { return e.bonusTimer }
func (e *Engine) Running() bool               { return e.running }
func (e *Engine) Ticks() uint64               { return e.ticks }
func (e *Engine) Width() int                  { return e.cfg.Width }
func (e *Engine) Height() int                 { return e.cfg.Height }

// Snapshot copies the full engine state.
func (e *Engine) Snapshot() model.Snapshot {
	return model.Snapshot{
		Tick:       e.ticks,
		Width:      e.cfg.Width,
		Height:     e.cfg.Height,
		Snake:      e.Snake(),
		Food:       e.food,
		Obstacles:  e.Obstacles(),
		Score:      e.score,
		FoodEaten:  e.foodEaten,
		BonusTimer: e.bonusTimer,
		Running:    e.running,
	}
}

// relocateFood moves the food to a uniformly random cell, occupied or not.
func (e *Engine) relocateFood(bonus bool) {
	e.food = model.Food{Position: e.randomPosition(), IsBonus: bonus}
}

func (e *Engine) randomPosition() model.Position {
	x := e.rng.Intn(e.cfg.Width)
	y := e.rng.Intn(e.cfg.Height)
	return model.Position{X: x, Y: y}
}

func (e *Engine) notify(out TickOutcome) {
	for _, fn := range e.tickListeners {
		fn(out)
	}
}

func prepend(body []model.Position, head model.Position) []model.Position {
	body = append(body, model.Position{})
	copy(body[1:], body)
	body[0] = head
	return body
}
