package gameflags

import (
	"errors"
	"flag"
	"testing"

	"github.com/signalsfoundry/gridsnake/core"
)

func TestRegisterDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	b := Register(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := b.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg != core.DefaultConfig() {
		t.Fatalf("Config = %+v, want %+v", cfg, core.DefaultConfig())
	}
}

func TestRegisterOverrides(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	b := Register(fs)
	if err := fs.Parse([]string{"-screen-width", "720", "-screen-height", "540", "-obstacles", "0", "-seed", "9"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := b.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 || cfg.ObstacleCount != 0 {
		t.Fatalf("Config = %+v, want 40x30 with no random obstacles", cfg)
	}
	if got := b.ResolveSeed(); got != 9 {
		t.Fatalf("ResolveSeed = %d, want 9", got)
	}
}

func TestConfigRejectsTinyBoard(t *testing.T) {
	// 180x180 at 18px is a 10x10 grid, too small to hold the fixed (20,20) obstacle.
	b := &Board{ScreenWidth: 180, ScreenHeight: 180, BlockSize: 18, BonusInterval: 5, BonusDuration: 40}
	if _, err := b.Config(); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("Config error = %v, want ErrInvalidConfig", err)
	}
}
