package core

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/gridsnake/model"
)

var (
	// ErrInvalidConfig indicates a game configuration failed validation.
	ErrInvalidConfig = errors.New("invalid game config")
	// ErrGameOver indicates a tick was requested after the snake collided.
	ErrGameOver = errors.New("game over")
)

// Defaults reproduce the classic 640x480 board drawn with 18px blocks.
const (
	DefaultScreenWidth   = 640
	DefaultScreenHeight  = 480
	DefaultBlockSize     = 18
	DefaultObstacleCount = 3
	DefaultBonusInterval = 5
	DefaultBonusDuration = 40

	FoodPoints      = 10
	BonusFoodPoints = 20
)

// Config holds everything Initialize needs apart from the random source.
type Config struct {
	Width  int // grid cells
	Height int // grid cells

	// ObstacleCount random obstacles are added on top of ObstacleSeed.
	ObstacleCount int
	// BonusInterval: every BonusInterval-th ordinary food eaten spawns a bonus food.
	BonusInterval int
	// BonusDuration is the number of non-eating ticks a bonus food survives.
	BonusDuration int

	SnakeStart   model.Position
	FoodStart    model.Position
	ObstacleSeed model.Position
}

// DefaultConfig returns the classic board layout.
func DefaultConfig() Config {
	w, h, _ := GridFromScreen(DefaultScreenWidth, DefaultScreenHeight, DefaultBlockSize)
	return Config{
		Width:         w,
		Height:        h,
		ObstacleCount: DefaultObstacleCount,
		BonusInterval: DefaultBonusInterval,
		BonusDuration: DefaultBonusDuration,
		SnakeStart:    model.Position{X: 5, Y: 5},
		FoodStart:     model.Position{X: 10, Y: 10},
		ObstacleSeed:  model.Position{X: 20, Y: 20},
	}
}

// GridFromScreen derives grid dimensions from a screen size and block size.
func GridFromScreen(screenWidth, screenHeight, blockSize int) (int, int, error) {
	if blockSize <= 0 {
		return 0, 0, fmt.Errorf("%w: block size must be positive, got %d", ErrInvalidConfig, blockSize)
	}
	w, h := screenWidth/blockSize, screenHeight/blockSize
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: screen %dx%d too small for block size %d",
			ErrInvalidConfig, screenWidth, screenHeight, blockSize)
	}
	return w, h, nil
}

// Validate rejects configurations that would produce undefined grid math.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: grid must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.ObstacleCount < 0:
		return fmt.Errorf("%w: obstacle count must not be negative, got %d", ErrInvalidConfig, c.ObstacleCount)
	case c.BonusInterval <= 0:
		return fmt.Errorf("%w: bonus interval must be positive, got %d", ErrInvalidConfig, c.BonusInterval)
	case c.BonusDuration <= 0:
		return fmt.Errorf("%w: bonus duration must be positive, got %d", ErrInvalidConfig, c.BonusDuration)
	}

	for _, p := range []struct {
		name string
		pos  model.Position
	}{
		{"snake start", c.SnakeStart},
		{"food start", c.FoodStart},
		{"obstacle seed", c.ObstacleSeed},
	} {
		if !p.pos.In(c.Width, c.Height) {
			return fmt.Errorf("%w: %s (%d,%d) outside %dx%d grid",
				ErrInvalidConfig, p.name, p.pos.X, p.pos.Y, c.Width, c.Height)
		}
	}
	return nil
}
