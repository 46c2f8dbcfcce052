package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/signalsfoundry/gridsnake/core"
	"github.com/signalsfoundry/gridsnake/internal/autopilot"
	"github.com/signalsfoundry/gridsnake/internal/gameflags"
	"github.com/signalsfoundry/gridsnake/internal/logging"
	"github.com/signalsfoundry/gridsnake/internal/session"
	"github.com/signalsfoundry/gridsnake/model"
	"github.com/signalsfoundry/gridsnake/timectrl"
)

// keepHeading in a move script leaves the heading unchanged for that tick.
const keepHeading = '.'

// Config controls one batch replay.
type Config struct {
	Game      core.Config
	Seed      uint64
	Ticks     int
	Moves     string
	Autopilot bool
}

// Result is the JSON document written on completion.
type Result struct {
	SessionID string         `json:"session_id"`
	Seed      uint64         `json:"seed"`
	Ticks     uint64         `json:"ticks"`
	GameOver  bool           `json:"game_over"`
	Snapshot  model.Snapshot `json:"snapshot"`
}

func main() {
	board := gameflags.Register(flag.CommandLine)
	ticks := flag.Int("ticks", 0, "number of ticks to simulate; 0 means the length of -moves")
	moves := flag.String("moves", "", "move script, one of U D L R per tick; '.' keeps the heading")
	auto := flag.Bool("autopilot", false, "steer with the greedy autopilot once the move script is exhausted")
	flag.Parse()

	log := logging.NewFromEnv(os.Stderr)
	ctx := context.Background()

	game, err := board.Config()
	if err != nil {
		log.Error(ctx, "invalid board configuration", logging.Err(err))
		os.Exit(1)
	}

	cfg := Config{
		Game:      game,
		Seed:      board.ResolveSeed(),
		Ticks:     *ticks,
		Moves:     *moves,
		Autopilot: *auto,
	}
	if err := run(ctx, cfg, log, os.Stdout); err != nil {
		log.Error(ctx, "simulation failed", logging.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log logging.Logger, out io.Writer) error {
	script, err := parseMoves(cfg.Moves)
	if err != nil {
		return err
	}
	ticks := cfg.Ticks
	if ticks == 0 {
		ticks = len(script)
	}
	if ticks <= 0 {
		return errors.New("nothing to simulate: set -ticks or -moves")
	}

	sess, err := session.New(cfg.Game, core.NewRandomSource(cfg.Seed), session.WithLogger(log))
	if err != nil {
		return err
	}
	log.Info(sess.Context(ctx), "starting replay",
		logging.Uint64("seed", cfg.Seed),
		logging.Int("ticks", ticks),
		logging.Int("scripted_moves", len(script)),
		logging.Bool("autopilot", cfg.Autopilot),
	)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tc := timectrl.NewTimeController(time.Unix(0, 0).UTC(), gameflags.DefaultTick, timectrl.Accelerated)
	step := 0
	tc.AddListener(func(time.Time) {
		switch {
		case step < len(script):
			if d := script[step]; d != model.DirNone {
				sess.Steer(d)
			}
		case cfg.Autopilot:
			sess.Steer(autopilot.Next(sess.Snapshot(), sess.Heading()))
		}
		step++

		if _, err := sess.Tick(loopCtx); err != nil || !sess.Running() {
			cancel()
		}
	})
	<-tc.Start(loopCtx, time.Duration(ticks)*gameflags.DefaultTick)

	snap := sess.Snapshot()
	res := Result{
		SessionID: sess.ID(),
		Seed:      cfg.Seed,
		Ticks:     snap.Tick,
		GameOver:  !snap.Running,
		Snapshot:  snap,
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// parseMoves turns a move script into per-tick headings; DirNone keeps the
// current heading.
func parseMoves(script string) ([]model.Direction, error) {
	out := make([]model.Direction, 0, len(script))
	for i, r := range script {
		if r == keepHeading {
			out = append(out, model.DirNone)
			continue
		}
		d, ok := model.ParseDirection(r)
		if !ok {
			return nil, fmt.Errorf("move %d: unknown move %q", i, r)
		}
		out = append(out, d)
	}
	return out, nil
}
