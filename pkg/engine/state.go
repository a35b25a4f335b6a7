package engine

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownUnit is returned when a lookup names a unit that does not
// exist on the board.
var ErrUnknownUnit = errors.New("unknown unit")

// UnitKey identifies a unit by power and unit id.
type UnitKey struct {
	Power  Power  `json:"power"`
	UnitID UnitID `json:"unitId"`
}

func (k UnitKey) String() string {
	return fmt.Sprintf("%s/%s", k.Power, k.UnitID)
}

// GameState is a snapshot of the board: unit positions, supply-center
// ownership, and the turn counter. A unit's entry in Units is its sole
// existence proof; deleting the entry destroys the unit. The adjudicator
// never mutates its input state, it always produces a fresh snapshot.
type GameState struct {
	Units       map[Power]map[UnitID]Node `json:"units"`
	CenterOwner map[Node]Power            `json:"centerOwner"`
	Turn        int                       `json:"turn"`
}

// NewGameState returns an empty state with allocated maps.
func NewGameState() *GameState {
	return &GameState{
		Units:       make(map[Power]map[UnitID]Node),
		CenterOwner: make(map[Node]Power),
	}
}

// Clone returns a deep copy: new top-level and inner maps, sharing no
// mutable structure with the original. Search agents rely on this to run
// speculative adjudications without corrupting the live state.
func (gs *GameState) Clone() *GameState {
	c := &GameState{Turn: gs.Turn}
	if gs.Units != nil {
		c.Units = make(map[Power]map[UnitID]Node, len(gs.Units))
		for power, units := range gs.Units {
			inner := make(map[UnitID]Node, len(units))
			for id, node := range units {
				inner[id] = node
			}
			c.Units[power] = inner
		}
	}
	if gs.CenterOwner != nil {
		c.CenterOwner = make(map[Node]Power, len(gs.CenterOwner))
		for node, owner := range gs.CenterOwner {
			c.CenterOwner[node] = owner
		}
	}
	return c
}

// AllUnits enumerates every unit on the board, sorted by power then unit
// id so iteration order is stable across calls.
func (gs *GameState) AllUnits() []UnitKey {
	var keys []UnitKey
	for power, units := range gs.Units {
		for id := range units {
			keys = append(keys, UnitKey{power, id})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Power != keys[j].Power {
			return keys[i].Power < keys[j].Power
		}
		return keys[i].UnitID < keys[j].UnitID
	})
	return keys
}

// UnitPosition returns the node occupied by the given unit, or
// ErrUnknownUnit if it does not exist.
func (gs *GameState) UnitPosition(power Power, id UnitID) (Node, error) {
	if units, ok := gs.Units[power]; ok {
		if node, ok := units[id]; ok {
			return node, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnknownUnit, power, id)
}

// UnitAt returns the unit occupying node, if any.
func (gs *GameState) UnitAt(node Node) (UnitKey, bool) {
	for power, units := range gs.Units {
		for id, loc := range units {
			if loc == node {
				return UnitKey{power, id}, true
			}
		}
	}
	return UnitKey{}, false
}

// Occupancy returns a node -> occupying power index for the whole board.
func (gs *GameState) Occupancy() map[Node]Power {
	occ := make(map[Node]Power)
	for power, units := range gs.Units {
		for _, node := range units {
			occ[node] = power
		}
	}
	return occ
}

// UnitCount returns the number of units the power controls.
func (gs *GameState) UnitCount(power Power) int {
	return len(gs.Units[power])
}

// CenterCount returns the number of supply centers the power owns.
func (gs *GameState) CenterCount(power Power) int {
	count := 0
	for _, owner := range gs.CenterOwner {
		if owner == power && power != Neutral {
			count++
		}
	}
	return count
}

// CenterCounts returns owned-center counts for every owning power.
func (gs *GameState) CenterCounts() map[Power]int {
	counts := make(map[Power]int)
	for _, owner := range gs.CenterOwner {
		if owner == Neutral {
			continue
		}
		counts[owner]++
	}
	return counts
}
