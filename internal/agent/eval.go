package agent

import (
	"math/rand"
	"sort"

	"github.com/mgriffin/nodewar/pkg/engine"
)

// Positional scoring shared by the Monte Carlo and negotiator agents.
// Node value is connectivity plus a bonus for supply centers; order
// scores layer occupancy and ownership adjustments on top.

// nodeValues assigns each node its degree plus 2 if it is a supply
// center.
func nodeValues(m *engine.MapDef) map[engine.Node]float64 {
	values := make(map[engine.Node]float64, len(m.Nodes))
	for _, node := range m.Nodes {
		values[node] = float64(len(m.Neighbors(node)))
		if m.IsSupplyCenter(node) {
			values[node] += 2.0
		}
	}
	return values
}

// centerOwners resolves the effective owner of every supply center:
// recorded ownership first, falling back to the power occupying it.
// Neutral means nobody holds a claim.
func centerOwners(gs *engine.GameState, m *engine.MapDef) map[engine.Node]engine.Power {
	owners := make(map[engine.Node]engine.Power, len(m.SupplyCenters))
	for _, center := range m.SupplyCenters {
		owner := gs.CenterOwner[center]
		if owner == engine.Neutral {
			if key, ok := gs.UnitAt(center); ok {
				owner = key.Power
			}
		}
		owners[center] = owner
	}
	return owners
}

func centerCounts(owners map[engine.Node]engine.Power) map[engine.Power]int {
	counts := make(map[engine.Power]int)
	for _, owner := range owners {
		if owner != engine.Neutral {
			counts[owner]++
		}
	}
	return counts
}

// centersThreatened counts the power's centers with an enemy unit on an
// adjacent node.
func centersThreatened(gs *engine.GameState, m *engine.MapDef, power engine.Power, owners map[engine.Node]engine.Power) int {
	occupancy := gs.Occupancy()
	threatened := 0
	for center, owner := range owners {
		if owner != power {
			continue
		}
		for _, neighbor := range m.Neighbors(center) {
			if occupant, ok := occupancy[neighbor]; ok && occupant != power {
				threatened++
				break
			}
		}
	}
	return threatened
}

// positionReward scores a state for a power: units on the board, owned
// centers weighted heavily, threatened centers penalized.
func positionReward(gs *engine.GameState, m *engine.MapDef, power engine.Power) float64 {
	owners := centerOwners(gs, m)
	counts := centerCounts(owners)
	threatened := centersThreatened(gs, m, power, owners)
	return float64(gs.UnitCount(power)) + float64(counts[power])*5.0 - float64(threatened)*2.0
}

// orderScore rates a single order for sampling. Moves prefer valuable,
// contested, and capturable nodes; holds weight the current node; a
// support leans toward helping the power's own units.
func orderScore(
	gs *engine.GameState,
	power engine.Power,
	id engine.UnitID,
	o engine.Order,
	values map[engine.Node]float64,
	occupancy map[engine.Node]engine.Power,
	owners map[engine.Node]engine.Power,
) float64 {
	switch o.Kind {
	case engine.OrderMove:
		base := values[o.To]
		if occupant, ok := occupancy[o.To]; !ok {
			base += 0.4
		} else if occupant == power {
			base -= 1.2
		} else {
			base += 0.8
		}
		if owner, isCenter := owners[o.To]; isCenter {
			if owner == engine.Neutral {
				base += 1.2
			} else if owner != power {
				base += 1.5
			}
		}
		return base + 0.1
	case engine.OrderHold:
		return values[gs.Units[power][id]] * 0.35
	case engine.OrderSupport:
		target := o.From
		if o.SupportsMove {
			target = o.SupportTo
		}
		base := values[target] * 0.2
		if o.SupportedPower == power {
			base += 0.3
		} else {
			base -= 0.2
		}
		return base
	default:
		return 0
	}
}

func sortedUnitIDs(legal map[engine.UnitID][]engine.Order) []engine.UnitID {
	ids := make([]engine.UnitID, 0, len(legal))
	for id := range legal {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// scoredGreedyOrders picks the highest orderScore entry per unit.
func scoredGreedyOrders(
	gs *engine.GameState,
	m *engine.MapDef,
	power engine.Power,
	values map[engine.Node]float64,
	legal map[engine.UnitID][]engine.Order,
) map[engine.UnitKey]engine.Order {
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
		bestScore := orderScore(gs, power, id, best, values, occupancy, owners)
		for _, o := range orders[1:] {
			if s := orderScore(gs, power, id, o, values, occupancy, owners); s > bestScore {
				best, bestScore = o, s
			}
		}
		selected[engine.UnitKey{Power: power, UnitID: id}] = best
	}
	return selected
}

// uniformOrders picks a uniformly random entry per unit.
func uniformOrders(
	rng *rand.Rand,
	power engine.Power,
	legal map[engine.UnitID][]engine.Order,
) map[engine.UnitKey]engine.Order {
	selected := make(map[engine.UnitKey]engine.Order, len(legal))
	for _, id := range sortedUnitIDs(legal) {
		orders := legal[id]
		if len(orders) == 0 {
			selected[engine.UnitKey{Power: power, UnitID: id}] = engine.NewHold(power, id)
			continue
		}
		selected[engine.UnitKey{Power: power, UnitID: id}] = orders[rng.Intn(len(orders))]
	}
	return selected
}
