// Package session owns one running game and serialises steering, ticking and
// snapshot reads against it.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/signalsfoundry/gridsnake/core"
	"github.com/signalsfoundry/gridsnake/internal/logging"
	"github.com/signalsfoundry/gridsnake/internal/observability"
	"github.com/signalsfoundry/gridsnake/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/gridsnake/internal/session"

// MetricsRecorder receives one call per simulated tick.
type MetricsRecorder interface {
	RecordTick(out core.TickOutcome, score, length int, elapsed time.Duration)
}

// Session coordinates a single engine with its steering input.
type Session struct {
	// mu guards every field below. Tick and Steer take the write lock,
	// Snapshot and the other readers take the read lock.
	mu sync.RWMutex

	id     string
	engine *core.Engine

	// heading is the direction committed on the last tick; pending is the
	// direction the next tick will use.
	heading model.Direction
	pending model.Direction

	done chan struct{}

	log     logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
}

// Option customises Session construction.
type Option func(*Session)

// WithLogger attaches a structured logger for game events.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetricsRecorder attaches an optional per-tick metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithTracer overrides the tracer used for tick spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithHeading sets the initial heading. Invalid directions are ignored.
func WithHeading(d model.Direction) Option {
	return func(s *Session) {
		if d.Valid() {
			s.heading = d
			s.pending = d
		}
	}
}

// WithID sets the session identifier instead of generating one.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New initialises an engine from cfg and rng and wraps it in a Session
// heading right.
func New(cfg core.Config, rng core.RandomSource, opts ...Option) (*Session, error) {
	engine, err := core.Initialize(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("initialize engine: %w", err)
	}
	s := &Session{
		id:      logging.NewSessionID(),
		engine:  engine,
		heading: model.DirRight,
		pending: model.DirRight,
		done:    make(chan struct{}),
		log:     logging.Noop(),
		tracer:  observability.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Context returns ctx annotated with the session identifier.
func (s *Session) Context(ctx context.Context) context.Context {
	return logging.ContextWithSessionID(ctx, s.id)
}

// Steer requests dir for the next tick. It reports whether the request was
// accepted: DirNone, unknown values, the exact reverse of the last committed
// heading and requests after game over are dropped.
func (s *Session) Steer(dir model.Direction) bool {
	if !dir.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.Running() || dir == s.heading.Opposite() {
		return false
	}
	s.pending = dir
	return true
}

// Tick advances the game one step with the pending heading.
// After game over it returns core.ErrGameOver and changes nothing.
func (s *Session) Tick(ctx context.Context) (core.TickOutcome, error) {
	ctx = s.Context(ctx)
	ctx, span := s.tracer.Start(ctx, "session.tick",
		trace.WithAttributes(attribute.String("session.id", s.id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	dir := s.pending
	out, err := s.engine.Advance(dir)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}
	s.heading = dir

	score := s.engine.Score()
	length := s.engine.Length()
	span.SetAttributes(
		attribute.Int64("game.tick", int64(out.Tick)),
		attribute.String("game.heading", dir.String()),
		attribute.Int("game.score", score),
		attribute.Int("game.length", length),
		attribute.Bool("game.ate", out.Ate),
		attribute.Bool("game.collided", out.Collided),
	)

	if s.metrics != nil {
		s.metrics.RecordTick(out, score, length, elapsed)
	}
	s.logOutcome(ctx, out, score, length)

	if out.Collided {
		close(s.done)
	}
	return out, nil
}

func (s *Session) logOutcome(ctx context.Context, out core.TickOutcome, score, length int) {
	switch {
	case out.AteBonus:
		s.log.Info(ctx, "bonus food eaten",
			logging.Uint64("tick", out.Tick),
			logging.Int("score", score),
			logging.Int("length", length),
		)
	case out.Ate:
		s.log.Debug(ctx, "food eaten",
			logging.Uint64("tick", out.Tick),
			logging.Int("score", score),
			logging.Int("length", length),
			logging.Bool("bonus_spawned", out.BonusSpawned),
		)
	case out.Collided:
		s.log.Info(ctx, "game over",
			logging.Uint64("tick", out.Tick),
			logging.Int("score", score),
			logging.Int("length", length),
			logging.Int("x", out.Head.X),
			logging.Int("y", out.Head.Y),
		)
	case out.BonusExpired:
		s.log.Debug(ctx, "bonus food expired", logging.Uint64("tick", out.Tick))
	}
}

// Snapshot returns a deep copy of the current game state.
func (s *Session) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Snapshot()
}

// Running reports whether the game is still in progress.
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Running()
}

// Heading returns the direction committed on the last tick.
func (s *Session) Heading() model.Direction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heading
}

// Score returns the current score.
func (s *Session) Score() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Score()
}

// Done is closed when the game ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
