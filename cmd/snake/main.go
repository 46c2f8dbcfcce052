package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/signalsfoundry/gridsnake/core"
	"github.com/signalsfoundry/gridsnake/internal/gameflags"
	"github.com/signalsfoundry/gridsnake/internal/logging"
	"github.com/signalsfoundry/gridsnake/internal/observability"
	"github.com/signalsfoundry/gridsnake/internal/session"
	"github.com/signalsfoundry/gridsnake/internal/terminal"
	"github.com/signalsfoundry/gridsnake/model"
	"github.com/signalsfoundry/gridsnake/timectrl"
)

// DefaultGameOverDelay is how long the final score stays on screen.
const DefaultGameOverDelay = 7 * time.Second

// Config controls one interactive game.
type Config struct {
	Game          core.Config
	Seed          uint64
	TickInterval  time.Duration
	GameOverDelay time.Duration
	Metrics       session.MetricsRecorder
}

func main() {
	board := gameflags.Register(flag.CommandLine)
	tick := flag.Duration("tick", gameflags.DefaultTick, "tick interval")
	gameOver := flag.Duration("game-over", DefaultGameOverDelay, "how long the game-over screen stays up")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables it")
	logFile := flag.String("log-file", "", "write logs to this file instead of discarding them")
	flag.Parse()

	log, closeLog, err := logging.NewFile(*logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	game, err := board.Config()
	if err != nil {
		log.Error(ctx, "invalid board configuration", logging.Err(err))
		os.Exit(1)
	}

	tracing := observability.TracingConfigFromEnv()
	tracing.Attributes = observability.BoardAttributes(game.Width, game.Height)
	shutdownTracing, err := observability.InitTracing(ctx, tracing, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	cfg := Config{
		Game:          game,
		Seed:          board.ResolveSeed(),
		TickInterval:  *tick,
		GameOverDelay: *gameOver,
	}
	if *metricsAddr != "" {
		collector, err := observability.NewGameCollector(nil)
		if err != nil {
			log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
			os.Exit(1)
		}
		cfg.Metrics = collector
		srv := serveMetrics(*metricsAddr, collector, log)
		defer srv.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Error(ctx, "failed to create screen", logging.Err(err))
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		log.Error(ctx, "failed to initialise screen", logging.Err(err))
		os.Exit(1)
	}
	defer screen.Fini()

	if _, err := run(ctx, cfg, screen, log); err != nil {
		screen.Fini()
		log.Error(ctx, "game failed", logging.Err(err))
		os.Exit(1)
	}
}

// run plays one game on screen until game over or quit and returns the final
// snapshot. After game over the score screen stays up for GameOverDelay.
func run(ctx context.Context, cfg Config, screen tcell.Screen, log logging.Logger) (model.Snapshot, error) {
	opts := []session.Option{session.WithLogger(log)}
	if cfg.Metrics != nil {
		opts = append(opts, session.WithMetricsRecorder(cfg.Metrics))
	}
	sess, err := session.New(cfg.Game, core.NewRandomSource(cfg.Seed), opts...)
	if err != nil {
		return model.Snapshot{}, err
	}
	ctx = sess.Context(ctx)
	log.Info(ctx, "starting game", logging.Uint64("seed", cfg.Seed))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	quit := make(chan struct{})
	go terminal.PollInput(screen, func(d model.Direction) { sess.Steer(d) }, func() { close(quit) })
	go func() {
		select {
		case <-quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	tick := cfg.TickInterval
	if tick <= 0 {
		tick = gameflags.DefaultTick
	}
	renderer := terminal.NewRenderer(screen)
	renderer.Draw(sess.Snapshot())

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	tc := timectrl.NewTimeController(time.Now().UTC(), tick, timectrl.RealTime)
	tc.AddListener(func(time.Time) {
		if _, err := sess.Tick(loopCtx); err != nil || !sess.Running() {
			stopLoop()
		}
		renderer.Draw(sess.Snapshot())
	})
	<-tc.Start(loopCtx, 0)

	final := sess.Snapshot()
	if final.Running {
		log.Info(ctx, "game quit", logging.Int("score", final.Score))
		return final, nil
	}

	renderer.DrawGameOver(final.Score)
	select {
	case <-ctx.Done():
	case <-time.After(cfg.GameOverDelay):
	}
	return final, nil
}

func serveMetrics(addr string, collector *observability.GameCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()
	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
