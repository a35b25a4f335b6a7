package engine

import (
	"fmt"
	"math/rand"
	"sort"
)

// Game stop reasons.
const (
	ReasonTargetCenters = "target_centers"
	ReasonMaxTurns      = "max_turns"
)

// GameResult describes how a finished game ended.
type GameResult struct {
	Winner  Power         `json:"winner"`
	Draw    bool          `json:"draw"`
	Centers map[Power]int `json:"centers"`
	Turn    int           `json:"turn"`
	Reason  string        `json:"reason"`
}

// OrderSource supplies one order per unit for a power. Agents satisfy
// this; a nil source falls back to uniform random selection over legal
// orders using the game's own rng.
type OrderSource func(gs *GameState, m *MapDef, power Power) map[UnitKey]Order

// InitializeState builds the starting position for a map: one unit per
// home center (unit id = center name), each home center owned by its
// power, every other supply center unowned.
func InitializeState(m *MapDef) *GameState {
	gs := NewGameState()
	for _, center := range m.SupplyCenters {
		gs.CenterOwner[center] = Neutral
	}
	for power, homes := range m.HomeCenters {
		units := make(map[UnitID]Node, len(homes))
		for _, home := range homes {
			units[UnitID(home)] = home
			if _, ok := gs.CenterOwner[home]; ok {
				gs.CenterOwner[home] = power
			}
		}
		gs.Units[power] = units
	}
	return gs
}

// ActivePowers returns the powers that still have units, sorted.
func ActivePowers(gs *GameState) []Power {
	var powers []Power
	for power, units := range gs.Units {
		if len(units) > 0 {
			powers = append(powers, power)
		}
	}
	sort.Slice(powers, func(i, j int) bool { return powers[i] < powers[j] })
	return powers
}

// Game drives repeated adjudication over one map until a power owns the
// target number of supply centers or the turn cap is reached.
type Game struct {
	Map           *MapDef
	State         *GameState
	TargetCenters int
	MaxTurns      int

	rng        *rand.Rand
	eliminated map[Power]bool
}

// NewGame validates the map and prepares a game over the given state.
// The seed drives the fallback random order selection only; adjudication
// itself is deterministic.
func NewGame(m *MapDef, gs *GameState, targetCenters, maxTurns int, seed int64) (*Game, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Game{
		Map:           m,
		State:         gs,
		TargetCenters: targetCenters,
		MaxTurns:      maxTurns,
		rng:           rand.New(rand.NewSource(seed)),
		eliminated:    make(map[Power]bool),
	}, nil
}

// Eliminated reports whether the power has been knocked out.
func (g *Game) Eliminated(power Power) bool {
	return g.eliminated[power]
}

// Step adjudicates one order round and advances the game: centers are
// captured by occupation, powers without units are eliminated, and the
// turn counter increments. The previous state is left untouched; the
// returned Resolution reports per-order outcomes against it.
func (g *Game) Step(orders map[UnitKey]Order) (*Resolution, error) {
	res, err := Resolve(g.State, g.Map, orders)
	if err != nil {
		return nil, err
	}
	next := res.Next

	for _, center := range g.Map.SupplyCenters {
		if key, ok := next.UnitAt(center); ok {
			next.CenterOwner[center] = key.Power
		}
	}

	for power, units := range next.Units {
		if len(units) == 0 {
			g.eliminated[power] = true
			delete(next.Units, power)
		}
	}

	next.Turn = g.State.Turn + 1
	g.State = next
	return res, nil
}

// Result returns the final result if a stop condition holds, or nil
// while the game is still running. A unique power at or above the
// center target wins; at the turn cap a unique center leader wins and
// anything else is a draw.
func (g *Game) Result() *GameResult {
	counts := g.State.CenterCounts()

	var winners []Power
	for power, count := range counts {
		if count >= g.TargetCenters {
			winners = append(winners, power)
		}
	}
	if len(winners) == 1 {
		return &GameResult{
			Winner:  winners[0],
			Centers: counts,
			Turn:    g.State.Turn,
			Reason:  ReasonTargetCenters,
		}
	}

	if g.State.Turn >= g.MaxTurns {
		result := &GameResult{Centers: counts, Turn: g.State.Turn, Reason: ReasonMaxTurns}
		max := 0
		for _, count := range counts {
			if count > max {
				max = count
			}
		}
		var leaders []Power
		for power, count := range counts {
			if count == max {
				leaders = append(leaders, power)
			}
		}
		if len(leaders) == 1 {
			result.Winner = leaders[0]
		} else {
			result.Draw = true
		}
		return result
	}

	return nil
}

// Run plays the game to completion. Each turn the source supplies orders
// for every active power; a nil source picks uniformly among legal
// orders with the game's seeded rng.
func (g *Game) Run(source OrderSource) (*GameResult, error) {
	if source == nil {
		source = g.randomSource
	}
	for {
		if result := g.Result(); result != nil {
			return result, nil
		}
		orders := make(map[UnitKey]Order)
		for _, power := range ActivePowers(g.State) {
			if g.eliminated[power] {
				continue
			}
			for key, order := range source(g.State, g.Map, power) {
				orders[key] = order
			}
		}
		if _, err := g.Step(orders); err != nil {
			return nil, fmt.Errorf("turn %d: %w", g.State.Turn, err)
		}
	}
}

// randomSource picks a uniformly random legal order per unit.
func (g *Game) randomSource(gs *GameState, m *MapDef, power Power) map[UnitKey]Order {
	orders := make(map[UnitKey]Order)
	legal := LegalOrders(gs, m, power)

	ids := make([]UnitID, 0, len(legal))
	for id := range legal {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		options := legal[id]
		if len(options) == 0 {
			orders[UnitKey{power, id}] = NewHold(power, id)
			continue
		}
		orders[UnitKey{power, id}] = options[g.rng.Intn(len(options))]
	}
	return orders
}
