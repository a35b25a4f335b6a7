// Package agent implements the order-selection policies that play the
// game: uniform random, greedy heuristic, Monte Carlo rollout search,
// and a rollout-driven negotiator.
package agent

import (
	"fmt"

	"github.com/mgriffin/nodewar/pkg/engine"
)

// Agent selects one order per unit for a power each turn.
type Agent interface {
	Name() string
	SelectOrders(gs *engine.GameState, m *engine.MapDef, power engine.Power) map[engine.UnitKey]engine.Order
}

// ForName builds an agent by name. The seed drives all of the agent's
// randomness; the same seed replays the same decisions. A non-nil value
// model replaces the handwritten reward in montecarlo rollouts and is
// ignored by the other agents.
func ForName(name string, m *engine.MapDef, seed int64, value *ValueModel) (Agent, error) {
	switch name {
	case "random":
		return NewRandom(Config{Seed: seed})
	case "heuristic":
		return NewHeuristic(), nil
	case "montecarlo", "mc":
		return NewMonteCarlo(MonteCarloConfig{Config: Config{Seed: seed}, Value: value})
	case "negotiator":
		return NewNegotiator(NegotiatorConfig{Config: Config{Seed: seed}, Map: m})
	default:
		return nil, fmt.Errorf("unknown agent %q", name)
	}
}
