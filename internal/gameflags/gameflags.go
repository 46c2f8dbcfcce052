// Package gameflags registers the board flags shared by every command.
package gameflags

import (
	"flag"
	"fmt"
	"time"

	"github.com/signalsfoundry/gridsnake/core"
)

// DefaultTick is the classic game speed.
const DefaultTick = 150 * time.Millisecond

// Board holds the parsed board flags.
type Board struct {
	ScreenWidth   int
	ScreenHeight  int
	BlockSize     int
	Obstacles     int
	BonusInterval int
	BonusDuration int
	Seed          uint64
}

// Register binds the board flags on fs.
func Register(fs *flag.FlagSet) *Board {
	b := &Board{}
	fs.IntVar(&b.ScreenWidth, "screen-width", core.DefaultScreenWidth, "board width in pixels of the classic layout")
	fs.IntVar(&b.ScreenHeight, "screen-height", core.DefaultScreenHeight, "board height in pixels of the classic layout")
	fs.IntVar(&b.BlockSize, "block", core.DefaultBlockSize, "pixels per grid cell")
	fs.IntVar(&b.Obstacles, "obstacles", core.DefaultObstacleCount, "number of random obstacles besides the fixed one")
	fs.IntVar(&b.BonusInterval, "bonus-interval", core.DefaultBonusInterval, "ordinary foods eaten between bonus foods")
	fs.IntVar(&b.BonusDuration, "bonus-duration", core.DefaultBonusDuration, "ticks a bonus food stays on the board")
	fs.Uint64Var(&b.Seed, "seed", 0, "random seed; 0 picks one from the clock")
	return b
}

// Config converts the flags into a validated engine configuration.
func (b *Board) Config() (core.Config, error) {
	w, h, err := core.GridFromScreen(b.ScreenWidth, b.ScreenHeight, b.BlockSize)
	if err != nil {
		return core.Config{}, err
	}
	cfg := core.DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	cfg.ObstacleCount = b.Obstacles
	cfg.BonusInterval = b.BonusInterval
	cfg.BonusDuration = b.BonusDuration
	if err := cfg.Validate(); err != nil {
		return core.Config{}, fmt.Errorf("board flags: %w", err)
	}
	return cfg, nil
}

// ResolveSeed returns Seed, or a clock-derived seed when Seed is zero.
func (b *Board) ResolveSeed() uint64 {
	if b.Seed != 0 {
		return b.Seed
	}
	return uint64(time.Now().UnixNano())
}
