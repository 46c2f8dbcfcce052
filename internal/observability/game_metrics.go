package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/gridsnake/core"
)

// GameCollector exposes per-session game metrics.
type GameCollector struct {
	gatherer prometheus.Gatherer

	TicksTotal        prometheus.Counter
	FoodsEaten        *prometheus.CounterVec
	BonusExpiredTotal prometheus.Counter
	GamesOverTotal    prometheus.Counter
	Score             prometheus.Gauge
	Length            prometheus.Gauge
	TickDuration      prometheus.Histogram
}

// NewGameCollector registers game metrics against the provided registerer.
func NewGameCollector(reg prometheus.Registerer) (*GameCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := gathererFor(reg)

	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snake_ticks_total",
		Help: "Number of simulated game ticks.",
	})
	ticks, err := registerCounter(reg, ticks, "snake_ticks_total")
	if err != nil {
		return nil, err
	}

	foods := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snake_foods_eaten_total",
		Help: "Food items eaten, labeled by kind (ordinary or bonus).",
	}, []string{"kind"})
	foods, err = registerCounterVec(reg, foods, "snake_foods_eaten_total")
	if err != nil {
		return nil, err
	}

	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snake_bonus_expired_total",
		Help: "Bonus food items that expired before being eaten.",
	})
	expired, err = registerCounter(reg, expired, "snake_bonus_expired_total")
	if err != nil {
		return nil, err
	}

	over := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snake_games_over_total",
		Help: "Games that ended in a collision.",
	})
	over, err = registerCounter(reg, over, "snake_games_over_total")
	if err != nil {
		return nil, err
	}

	score := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snake_score",
		Help: "Current score of the running session.",
	})
	score, err = registerGauge(reg, score, "snake_score")
	if err != nil {
		return nil, err
	}

	length := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snake_length",
		Help: "Current number of snake segments.",
	})
	length, err = registerGauge(reg, length, "snake_length")
	if err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "snake_tick_duration_seconds",
		Help:    "Wall-clock time spent simulating a single tick.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})
	duration, err = registerHistogram(reg, duration, "snake_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &GameCollector{
		gatherer:          gatherer,
		TicksTotal:        ticks,
		FoodsEaten:        foods,
		BonusExpiredTotal: expired,
		GamesOverTotal:    over,
		Score:             score,
		Length:            length,
		TickDuration:      duration,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *GameCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a /metrics handler for the collector's registry.
func (c *GameCollector) Handler() http.Handler {
	if c == nil {
		return handlerFor(nil)
	}
	return handlerFor(c.gatherer)
}

// RecordTick folds one tick outcome into the collector.
func (c *GameCollector) RecordTick(out core.TickOutcome, score, length int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.TicksTotal.Inc()
	c.TickDuration.Observe(elapsed.Seconds())
	switch {
	case out.AteBonus:
		c.FoodsEaten.WithLabelValues("bonus").Inc()
	case out.Ate:
		c.FoodsEaten.WithLabelValues("ordinary").Inc()
	}
	if out.BonusExpired {
		c.BonusExpiredTotal.Inc()
	}
	if out.Collided {
		c.GamesOverTotal.Inc()
	}
	c.Score.Set(float64(score))
	c.Length.Set(float64(length))
}
