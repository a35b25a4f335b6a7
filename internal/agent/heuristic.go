package agent

import (
	"github.com/mgriffin/nodewar/pkg/engine"
)

// Heuristic plays a one-ply greedy policy: grab centers, prefer enemy
// and unowned centers over reinforcing its own, and support allied
// pushes onto centers the ally does not yet hold. It is deterministic
// and stateless.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

func (a *Heuristic) Name() string { return "heuristic" }

func (a *Heuristic) SelectOrders(gs *engine.GameState, m *engine.MapDef, power engine.Power) map[engine.UnitKey]engine.Order {
	legal := engine.LegalOrders(gs, m, power)
	occupancy := gs.Occupancy()
	owners := centerOwners(gs, m)

	selected := make(map[engine.UnitKey]engine.Order, len(legal))
	for _, id := range sortedUnitIDs(legal) {
		orders := legal[id]
		if len(orders) == 0 {
			selected[engine.UnitKey{Power: power, UnitID: id}] = engine.NewHold(power, id)
			continue
		}
		best := orders[0]
		bestScore := a.score(best, power, occupancy, owners)
		for _, o := range orders[1:] {
			if s := a.score(o, power, occupancy, owners); s > bestScore {
				best, bestScore = o, s
			}
		}
		selected[engine.UnitKey{Power: power, UnitID: id}] = best
	}
	return selected
}

func (a *Heuristic) score(o engine.Order, power engine.Power, occupancy, owners map[engine.Node]engine.Power) int {
	switch o.Kind {
	case engine.OrderMove:
		owner, isCenter := owners[o.To]
		if !isCenter {
			return 0
		}
		if occupancy[o.To] == power {
			return 0
		}
		switch {
		case owner == engine.Neutral:
			return 3
		case owner != power:
			return 2
		default:
			return 1
		}
	case engine.OrderSupport:
		if !o.SupportsMove {
			return 0
		}
		owner, isCenter := owners[o.SupportTo]
		if !isCenter {
			return 0
		}
		// Pushing an ally onto a center it already holds is wasted effort.
		if owner == o.SupportedPower || occupancy[o.SupportTo] == o.SupportedPower {
			return 0
		}
		return 2
	default:
		return 0
	}
}
