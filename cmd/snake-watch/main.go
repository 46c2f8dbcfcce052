package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/signalsfoundry/gridsnake/internal/logging"
	"github.com/signalsfoundry/gridsnake/internal/spectator"
	"github.com/signalsfoundry/gridsnake/internal/terminal"
	"github.com/signalsfoundry/gridsnake/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// snapshotter is the subset of spectator.Client used by the watch loop.
type snapshotter interface {
	Snapshot(ctx context.Context) (model.Snapshot, error)
}

func main() {
	addr := flag.String("addr", "127.0.0.1:50051", "spectator gRPC address of a snake-server")
	interval := flag.Duration("interval", 100*time.Millisecond, "polling interval")
	gameOver := flag.Duration("game-over", 7*time.Second, "how long the game-over screen stays up")
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

	client, err := spectator.Dial(ctx, *addr)
	if err != nil {
		log.Error(ctx, "failed to dial spectator", logging.String("addr", *addr), logging.Err(err))
		os.Exit(1)
	}
	defer client.Close()

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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go terminal.PollInput(screen, nil, cancel)

	renderer := terminal.NewRenderer(screen)
	final, err := watch(ctx, client, renderer, *interval, log)
	if err != nil {
		log.Error(ctx, "watch stopped", logging.Err(err))
		return
	}
	if !final.Running {
		renderer.DrawGameOver(final.Score)
		select {
		case <-ctx.Done():
		case <-time.After(*gameOver):
		}
	}
}

// watch polls src every interval and draws each snapshot until the remote
// game ends or ctx is cancelled. It returns the last snapshot seen.
// Unavailable errors are retried; anything else stops the loop.
func watch(ctx context.Context, src snapshotter, renderer *terminal.Renderer, interval time.Duration, log logging.Logger) (model.Snapshot, error) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last model.Snapshot
	for {
		snap, err := src.Snapshot(ctx)
		switch {
		case err == nil:
			last = snap
			renderer.Draw(snap)
			if !snap.Running {
				log.Info(ctx, "remote game over", logging.Int("score", snap.Score))
				return last, nil
			}
		case status.Code(err) == codes.Unavailable:
			log.Debug(ctx, "spectator unavailable, retrying", logging.Err(err))
		case ctx.Err() != nil:
			return last, nil
		default:
			return last, err
		}

		select {
		case <-ctx.Done():
			return last, nil
		case <-ticker.C:
		}
	}
}
