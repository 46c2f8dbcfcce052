package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/signalsfoundry/gridsnake/core"
	"github.com/signalsfoundry/gridsnake/internal/autopilot"
	"github.com/signalsfoundry/gridsnake/internal/gameflags"
	"github.com/signalsfoundry/gridsnake/internal/livefeed"
	"github.com/signalsfoundry/gridsnake/internal/logging"
	"github.com/signalsfoundry/gridsnake/internal/observability"
	"github.com/signalsfoundry/gridsnake/internal/session"
	"github.com/signalsfoundry/gridsnake/internal/spectator"
	"github.com/signalsfoundry/gridsnake/timectrl"
	"google.golang.org/grpc"
)

// maxSpectatorStreams caps concurrent spectator RPCs per connection.
const maxSpectatorStreams = 64

// Config controls one headless server run.
type Config struct {
	Game          core.Config
	Seed          uint64
	ListenAddress string
	HTTPAddress   string
	WSOrigins     []string
	TickInterval  time.Duration
	Accelerated   bool
}

func main() {
	board := gameflags.Register(flag.CommandLine)
	grpcAddr := flag.String("grpc-addr", ":50051", "TCP address the spectator gRPC server listens on")
	httpAddr := flag.String("http-addr", ":9090", "HTTP address for /metrics, /snapshot and the /ws live feed; empty disables it")
	wsOrigins := flag.String("ws-origins", "", "comma-separated Origin values allowed on /ws; empty is same-origin only, * allows any")
	tick := flag.Duration("tick", gameflags.DefaultTick, "tick interval")
	accelerated := flag.Bool("accelerated", false, "run ticks back to back instead of on the wall clock")
	flag.Parse()

	log := logging.NewFromEnv(os.Stdout)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	game, err := board.Config()
	if err != nil {
		log.Error(ctx, "invalid board configuration", logging.Err(err))
		os.Exit(1)
	}
	cfg := Config{
		Game:          game,
		Seed:          board.ResolveSeed(),
		ListenAddress: *grpcAddr,
		HTTPAddress:   *httpAddr,
		WSOrigins:     splitList(*wsOrigins),
		TickInterval:  *tick,
		Accelerated:   *accelerated,
	}

	tracing := observability.TracingConfigFromEnv()
	tracing.Attributes = observability.BoardAttributes(game.Width, game.Height)
	shutdownTracing, err := observability.InitTracing(ctx, tracing, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.ListenAddress), logging.Err(err))
		os.Exit(1)
	}

	var httpLis net.Listener
	if cfg.HTTPAddress != "" {
		httpLis, err = net.Listen("tcp", cfg.HTTPAddress)
		if err != nil {
			log.Error(ctx, "failed to listen for HTTP", logging.String("addr", cfg.HTTPAddress), logging.Err(err))
			os.Exit(1)
		}
	}

	if err := run(ctx, cfg, log, lis, httpLis); err != nil {
		log.Error(ctx, "server exited", logging.Err(err))
		os.Exit(1)
	}
}

// run plays one autopilot game and serves spectators on lis (gRPC) and httpLis
// (HTTP, optional) until ctx is cancelled. The final snapshot stays available
// after game over.
func run(ctx context.Context, cfg Config, log logging.Logger, lis, httpLis net.Listener) error {
	if log == nil {
		log = logging.Noop()
	}

	gameMetrics, err := observability.NewGameCollector(nil)
	if err != nil {
		return err
	}
	rpcMetrics, err := observability.NewRPCCollector(nil)
	if err != nil {
		return err
	}

	sess, err := session.New(cfg.Game, core.NewRandomSource(cfg.Seed),
		session.WithLogger(log),
		session.WithMetricsRecorder(gameMetrics),
	)
	if err != nil {
		return err
	}
	sessCtx := sess.Context(ctx)

	svc := spectator.NewService(sess, log)
	server := spectator.NewServer(svc, log,
		spectator.WithRPCCollector(rpcMetrics),
		spectator.WithGRPCOptions(grpc.MaxConcurrentStreams(maxSpectatorStreams)),
	)
	go svc.WatchGameOver(ctx, sess.Done())

	httpSrv := serveHTTP(httpLis, sess, rpcMetrics, cfg.WSOrigins, log)

	serveCh := make(chan error, 1)
	go func() {
		log.Info(sessCtx, "starting spectator gRPC server", logging.String("addr", lis.Addr().String()))
		serveCh <- server.Serve(lis)
	}()

	loopDone := runSimLoop(ctx, cfg, sess, log)

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-serveCh:
	}

	log.Info(sessCtx, "shutting down snake server", logging.Int("score", sess.Score()))
	server.GracefulStop()
	<-loopDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if httpSrv != nil {
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	if serveErr != nil && !errors.Is(serveErr, net.ErrClosed) {
		return serveErr
	}
	return nil
}

// runSimLoop drives sess with the autopilot until game over or ctx ends.
func runSimLoop(ctx context.Context, cfg Config, sess *session.Session, log logging.Logger) <-chan struct{} {
	mode := timectrl.RealTime
	if cfg.Accelerated {
		mode = timectrl.Accelerated
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = gameflags.DefaultTick
	}

	loopCtx, cancel := context.WithCancel(ctx)
	tc := timectrl.NewTimeController(time.Now().UTC(), tick, mode)
	log.Info(sess.Context(ctx), "autopilot loop started",
		logging.Duration("tick", tick),
		logging.String("mode", mode.String()),
	)
	tc.AddListener(func(time.Time) {
		sess.Steer(autopilot.Next(sess.Snapshot(), sess.Heading()))
		if _, err := sess.Tick(loopCtx); err != nil {
			cancel()
			return
		}
		if !sess.Running() {
			log.Info(sess.Context(loopCtx), "autopilot game finished",
				logging.Int("score", sess.Score()),
				logging.Uint64("ticks", tc.Ticks()),
			)
			cancel()
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		<-tc.Start(loopCtx, 0)
	}()
	return done
}

// serveHTTP exposes metrics and the live snapshot feed on lis.
func serveHTTP(lis net.Listener, sess *session.Session, collector *observability.RPCCollector, origins []string, log logging.Logger) *http.Server {
	if lis == nil {
		return nil
	}
	srv := &http.Server{
		Handler: livefeed.NewRouter(sess, livefeed.Options{
			Metrics:        collector.Handler(),
			AllowedOrigins: origins,
			Log:            log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "http server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving metrics and live feed", logging.String("addr", lis.Addr().String()))
	return srv
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
