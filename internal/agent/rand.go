package agent

import (
	"errors"
	"math/rand"
)

// Config carries the random source shared by all agent constructors.
// Set Seed for a fresh deterministic source, or RNG to share one across
// agents. Setting both is a construction error.
type Config struct {
	Seed int64
	RNG  *rand.Rand
}

var errSeedAndRNG = errors.New("agent: provide either a seed or an rng, not both")

func (c Config) rand() (*rand.Rand, error) {
	if c.RNG != nil {
		if c.Seed != 0 {
			return nil, errSeedAndRNG
		}
		return c.RNG, nil
	}
	return rand.New(rand.NewSource(c.Seed)), nil
}
