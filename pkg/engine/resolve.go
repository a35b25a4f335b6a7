package engine

import (
	"fmt"
	"sort"
)

// Resolution is the full outcome of adjudicating one order round.
type Resolution struct {
	// Next is the resulting board state; the input state is untouched.
	Next *GameState
	// Orders reports the normalized order set with per-order outcomes,
	// sorted by unit key.
	Orders []ResolvedOrder
	// Dislodged lists units removed from the board, sorted by unit key.
	Dislodged []UnitKey
}

// Adjudicate resolves one simultaneous order round and returns the next
// board state. Units without a submitted order hold. The call is pure:
// for a fixed state and order set the output is always identical.
func Adjudicate(gs *GameState, m *MapDef, orders map[UnitKey]Order) (*GameState, error) {
	res, err := Resolve(gs, m, orders)
	if err != nil {
		return nil, err
	}
	return res.Next, nil
}

// Resolve is Adjudicate plus a per-order outcome report. It fails fast
// on malformed input: an order keyed to a unit absent from the state, an
// order whose own power/unit fields disagree with its key, or a move to
// a node that is not on the map. A support whose declared origin no
// longer matches the supported unit's position is not an error; it is
// silently discounted.
func Resolve(gs *GameState, m *MapDef, orders map[UnitKey]Order) (*Resolution, error) {
	r, err := newResolver(gs, m, orders)
	if err != nil {
		return nil, err
	}
	r.computeStrengths()
	r.selectCandidates()
	r.shrinkToFixedPoint()
	return r.buildResolution(), nil
}

// resolver carries the intermediate adjudication tables for one round.
type resolver struct {
	gs *GameState
	m  *MapDef

	units    []UnitKey          // stable iteration order
	orders   map[UnitKey]Order  // normalized: every unit has an order
	moves    map[UnitKey]Order  // move subset of orders
	occupant map[Node]UnitKey   // start-of-turn occupancy
	position map[UnitKey]Node   // start-of-turn unit positions

	moveStrength  map[UnitKey]int
	holdStrength  map[UnitKey]int // only keys with at least one valid hold support
	validSupports map[UnitKey]bool
	success       map[UnitKey]bool
}

func newResolver(gs *GameState, m *MapDef, submitted map[UnitKey]Order) (*resolver, error) {
	r := &resolver{
		gs:            gs,
		m:             m,
		units:         gs.AllUnits(),
		orders:        make(map[UnitKey]Order, len(submitted)),
		moves:         make(map[UnitKey]Order),
		occupant:      make(map[Node]UnitKey),
		position:      make(map[UnitKey]Node),
		moveStrength:  make(map[UnitKey]int),
		holdStrength:  make(map[UnitKey]int),
		validSupports: make(map[UnitKey]bool),
		success:       make(map[UnitKey]bool),
	}

	for key := range submitted {
		if _, err := gs.UnitPosition(key.Power, key.UnitID); err != nil {
			return nil, fmt.Errorf("order for absent unit: %w", err)
		}
	}

	for _, key := range r.units {
		node := gs.Units[key.Power][key.UnitID]
		r.position[key] = node
		r.occupant[node] = key

		order, ok := submitted[key]
		if !ok {
			order = NewHold(key.Power, key.UnitID)
		} else if order.Key() != key {
			return nil, fmt.Errorf("order %s submitted under key %s", order.Describe(), key)
		}
		r.orders[key] = order
		if order.Kind == OrderMove {
			if !m.HasNode(order.To) {
				return nil, fmt.Errorf("move %s targets node %q not on map %q", order.Describe(), order.To, m.Name)
			}
			r.moves[key] = order
		}
	}
	return r, nil
}

// computeStrengths tallies move and hold strengths: 1 plus the number of
// support orders that name the action, match its destination, and declare
// the supported unit's actual current location.
func (r *resolver) computeStrengths() {
	for key := range r.moves {
		r.moveStrength[key] = 1
	}

	for _, key := range r.units {
		order := r.orders[key]
		if order.Kind != OrderSupport {
			continue
		}
		supported := order.SupportedKey()
		actual, ok := r.position[supported]
		if !ok || actual != order.From {
			continue // stale support: the unit moved since the order was built
		}

		if order.SupportsMove {
			move, ok := r.moves[supported]
			if !ok || move.To != order.SupportTo {
				continue
			}
			r.moveStrength[supported]++
			r.validSupports[key] = true
		} else {
			if r.orders[supported].Kind != OrderHold {
				continue
			}
			if _, ok := r.holdStrength[supported]; !ok {
				r.holdStrength[supported] = 1
			}
			r.holdStrength[supported]++
			r.validSupports[key] = true
		}
	}
}

// selectCandidates keeps, per destination, the unique strongest mover.
// A strength tie means nobody takes the node: ties always bounce.
func (r *resolver) selectCandidates() {
	byTarget := make(map[Node][]UnitKey)
	for key, move := range r.moves {
		byTarget[move.To] = append(byTarget[move.To], key)
	}

	for _, movers := range byTarget {
		max := 0
		for _, key := range movers {
			if s := r.moveStrength[key]; s > max {
				max = s
			}
		}
		var strongest []UnitKey
		for _, key := range movers {
			if r.moveStrength[key] == max {
				strongest = append(strongest, key)
			}
		}
		if len(strongest) == 1 {
			r.success[strongest[0]] = true
		}
	}
}

// shrinkToFixedPoint repeatedly removes candidate moves beaten by the
// defender of their destination until a full pass removes nothing. The
// success set only shrinks, so the loop terminates for any finite board;
// chains and cycles need no special casing.
func (r *resolver) shrinkToFixedPoint() {
	for {
		var removals []UnitKey
		for _, key := range r.units {
			if !r.success[key] {
				continue
			}
			target := r.moves[key].To
			defender, occupied := r.occupant[target]
			if !occupied || defender == key {
				continue
			}
			defenderOrder := r.orders[defender]
			if defenderOrder.Kind == OrderMove && r.success[defender] &&
				r.moves[defender].To != r.position[key] {
				continue // destination is being vacated
			}
			// A head-to-head occupant (moving into the candidate's own
			// node) defends with strength 1; equal strength bounces both.
			defenderStrength := 1
			if defenderOrder.Kind == OrderHold {
				if s, ok := r.holdStrength[defender]; ok {
					defenderStrength = s
				}
			}
			if r.moveStrength[key] <= defenderStrength {
				removals = append(removals, key)
			}
		}
		if len(removals) == 0 {
			return
		}
		for _, key := range removals {
			delete(r.success, key)
		}
	}
}

// buildResolution applies the surviving moves to a fresh state clone and
// assembles the per-order report.
func (r *resolver) buildResolution() *Resolution {
	next := r.gs.Clone()

	dislodged := make(map[UnitKey]bool)
	for key := range r.success {
		target := r.moves[key].To
		if defender, ok := r.occupant[target]; ok && !r.success[defender] {
			dislodged[defender] = true
		}
	}

	for key := range dislodged {
		delete(next.Units[key.Power], key.UnitID)
	}
	for key := range r.success {
		next.Units[key.Power][key.UnitID] = r.moves[key].To
	}

	res := &Resolution{Next: next}
	for _, key := range r.units {
		order := r.orders[key]
		outcome := OutcomeSucceeded
		switch order.Kind {
		case OrderMove:
			if !r.success[key] {
				outcome = OutcomeBounced
			}
		case OrderSupport:
			if !r.validSupports[key] {
				outcome = OutcomeVoid
			}
		}
		if dislodged[key] {
			outcome = OutcomeDislodged
		}
		res.Orders = append(res.Orders, ResolvedOrder{Unit: key, Order: order, Outcome: outcome})
		if dislodged[key] {
			res.Dislodged = append(res.Dislodged, key)
		}
	}
	sort.Slice(res.Dislodged, func(i, j int) bool {
		if res.Dislodged[i].Power != res.Dislodged[j].Power {
			return res.Dislodged[i].Power < res.Dislodged[j].Power
		}
		return res.Dislodged[i].UnitID < res.Dislodged[j].UnitID
	})
	return res
}
