package brew

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"
)

type Config struct {
	// Match length
	Turns int
	// Turn in which every player receives an extra White1
	ExtraWhiteTurn int

	// Cauldron
	WhiteLimit int

	// Ruby exchange prices
	RubiesToFillFlask int
	RubiesToMoveDrop  int

	// Fortune-teller deck; one card is drawn and active per turn. Empty disables it.
	FortuneCards []Rule

	// RNG seed (0 => crypto-random)
	Seed int64

	Logger *zap.Logger
	Events func(Event)
}

// DefaultConfig returns the base game settings.
func DefaultConfig() Config {
	return Config{
		Turns:             9,
		ExtraWhiteTurn:    6,
		WhiteLimit:        DefaultWhiteLimit,
		RubiesToFillFlask: 2,
		RubiesToMoveDrop:  2,
	}
}

func (c Config) validate() error {
	if c.Turns <= 0 {
		return fmt.Errorf("Turns must be > 0")
	}
	if c.ExtraWhiteTurn < 0 {
		return fmt.Errorf("ExtraWhiteTurn must be >= 0")
	}
	if c.WhiteLimit <= 0 {
		return fmt.Errorf("WhiteLimit must be > 0")
	}
	if c.RubiesToFillFlask <= 0 || c.RubiesToMoveDrop <= 0 {
		return fmt.Errorf("invalid ruby prices: flask=%d drop=%d", c.RubiesToFillFlask, c.RubiesToMoveDrop)
	}
	for i, card := range c.FortuneCards {
		if card == nil {
			return fmt.Errorf("fortune card %d is nil", i)
		}
	}
	return nil
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]))
	if seed == 0 {
		seed = 1
	}
	return seed, nil
}
