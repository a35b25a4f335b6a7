package engine

import "sort"

// LegalOrders enumerates every order each of power's units could submit
// this turn: a hold, a move to each neighbor, a support-hold for every
// other unit standing on a neighboring node, and a support-move for every
// move whose destination neighbors the supporting unit. A unit never
// supports itself. Powers with no units get an empty mapping.
//
// The function is pure; order lists come back in a deterministic order.
func LegalOrders(gs *GameState, m *MapDef, power Power) map[UnitID][]Order {
	orders := make(map[UnitID][]Order)
	units, ok := gs.Units[power]
	if !ok {
		return orders
	}

	ids := make([]UnitID, 0, len(units))
	for id := range units {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	others := gs.AllUnits()

	for _, id := range ids {
		location := units[id]
		unitOrders := []Order{NewHold(power, id)}

		neighbors := m.Neighbors(location)
		for _, to := range neighbors {
			unitOrders = append(unitOrders, NewMove(power, id, to))
		}

		adjacent := make(map[Node]bool, len(neighbors))
		for _, n := range neighbors {
			adjacent[n] = true
		}

		for _, other := range others {
			if other.Power == power && other.UnitID == id {
				continue
			}
			from := gs.Units[other.Power][other.UnitID]
			if adjacent[from] {
				unitOrders = append(unitOrders, NewSupportHold(power, id, other, from))
			}
			// Supporting a move requires adjacency to the destination,
			// not to the moving unit's origin.
			for _, to := range m.Neighbors(from) {
				if adjacent[to] {
					unitOrders = append(unitOrders, NewSupportMove(power, id, other, from, to))
				}
			}
		}

		orders[id] = unitOrders
	}
	return orders
}
