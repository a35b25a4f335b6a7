package agent

import (
	"math/rand"

	"github.com/mgriffin/nodewar/pkg/engine"
)

// Random picks a uniformly random legal order for every unit.
type Random struct {
	rng *rand.Rand
}

func NewRandom(cfg Config) (*Random, error) {
	rng, err := cfg.rand()
	if err != nil {
		return nil, err
	}
	return &Random{rng: rng}, nil
}

func (a *Random) Name() string { return "random" }

func (a *Random) SelectOrders(gs *engine.GameState, m *engine.MapDef, power engine.Power) map[engine.UnitKey]engine.Order {
	return uniformOrders(a.rng, power, engine.LegalOrders(gs, m, power))
}
