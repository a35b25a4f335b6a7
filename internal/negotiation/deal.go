// Package negotiation implements one-turn deals between powers and the
// pairwise protocol that proposes and accepts them before each order phase.
package negotiation

import (
	"fmt"

	"github.com/mgriffin/nodewar/pkg/engine"
)

// LegalSet maps each of a power's units to the orders it may submit.
type LegalSet map[engine.UnitID][]engine.Order

// UnitRef identifies a unit by power and unit id.
type UnitRef struct {
	Power  engine.Power  `json:"power"`
	UnitID engine.UnitID `json:"unitId"`
}

// Violation records one broken promise: the power, the deal, and the
// offending order when there is one.
type Violation struct {
	Power  engine.Power
	Deal   Deal
	UnitID engine.UnitID
	Order  *engine.Order
	Reason string
}

// Deal is a one-turn agreement between two powers. AllowedOrders filters
// a power's legal orders down to those consistent with the deal;
// Violations inspects submitted orders after the fact. Deals bind only
// the powers they name and expire after one action phase.
type Deal interface {
	AllowedOrders(power engine.Power, legal LegalSet) LegalSet
	Violations(power engine.Power, submitted map[engine.UnitID]engine.Order, gs *engine.GameState) []Violation
	Describe() string
}

// PeaceDeal is a mutual promise not to enter the nodes the other party
// occupied when the deal was struck.
type PeaceDeal struct {
	I, J      engine.Power
	Positions map[engine.Power][]engine.Node
}

// NewPeaceDeal snapshots both parties' current unit positions.
func NewPeaceDeal(i, j engine.Power, gs *engine.GameState) *PeaceDeal {
	positions := make(map[engine.Power][]engine.Node, 2)
	for _, power := range []engine.Power{i, j} {
		for _, node := range gs.Units[power] {
			positions[power] = append(positions[power], node)
		}
	}
	return &PeaceDeal{I: i, J: j, Positions: positions}
}

func (d *PeaceDeal) other(power engine.Power) engine.Power {
	if power == d.I {
		return d.J
	}
	return d.I
}

func (d *PeaceDeal) AllowedOrders(power engine.Power, legal LegalSet) LegalSet {
	if power != d.I && power != d.J {
		return legal
	}
	prohibited := make(map[engine.Node]bool)
	for _, node := range d.Positions[d.other(power)] {
		prohibited[node] = true
	}
	if len(prohibited) == 0 {
		return legal
	}

	restricted := make(LegalSet, len(legal))
	for id, orders := range legal {
		kept := make([]engine.Order, 0, len(orders))
		for _, o := range orders {
			if o.Kind == engine.OrderMove && prohibited[o.To] {
				continue
			}
			kept = append(kept, o)
		}
		restricted[id] = kept
	}
	return restricted
}

// Violations checks against the opponent's positions at submission time,
// not the snapshot: the promise tracks where the other side's units are.
func (d *PeaceDeal) Violations(power engine.Power, submitted map[engine.UnitID]engine.Order, gs *engine.GameState) []Violation {
	if power != d.I && power != d.J {
		return nil
	}
	opponentNodes := make(map[engine.Node]bool)
	for _, node := range gs.Units[d.other(power)] {
		opponentNodes[node] = true
	}

	var violations []Violation
	for id, order := range submitted {
		if order.Kind == engine.OrderMove && opponentNodes[order.To] {
			o := order
			violations = append(violations, Violation{
				Power:  power,
				Deal:   d,
				UnitID: id,
				Order:  &o,
				Reason: fmt.Sprintf("peace deal prohibits entering %s's provinces", d.other(power)),
			})
		}
	}
	return violations
}

func (d *PeaceDeal) Describe() string {
	return fmt.Sprintf("peace(%s, %s)", d.I, d.J)
}

// NoEnterDeal is a promise by both parties not to move into one node
// this turn.
type NoEnterDeal struct {
	I, J engine.Power
	Node engine.Node
}

func (d *NoEnterDeal) AllowedOrders(power engine.Power, legal LegalSet) LegalSet {
	if power != d.I && power != d.J {
		return legal
	}
	restricted := make(LegalSet, len(legal))
	for id, orders := range legal {
		kept := make([]engine.Order, 0, len(orders))
		for _, o := range orders {
			if o.Kind == engine.OrderMove && o.To == d.Node {
				continue
			}
			kept = append(kept, o)
		}
		restricted[id] = kept
	}
	return restricted
}

func (d *NoEnterDeal) Violations(power engine.Power, submitted map[engine.UnitID]engine.Order, _ *engine.GameState) []Violation {
	if power != d.I && power != d.J {
		return nil
	}
	var violations []Violation
	for id, order := range submitted {
		if order.Kind == engine.OrderMove && order.To == d.Node {
			o := order
			violations = append(violations, Violation{
				Power:  power,
				Deal:   d,
				UnitID: id,
				Order:  &o,
				Reason: fmt.Sprintf("deal prohibits entering %s", d.Node),
			})
		}
	}
	return violations
}

func (d *NoEnterDeal) Describe() string {
	return fmt.Sprintf("no-enter(%s, %s, %s)", d.I, d.J, d.Node)
}

// SupportDeal commits one specific unit of the promising power to support
// a specific move by the other power's unit.
type SupportDeal struct {
	I, J      engine.Power
	Supported UnitRef
	From, To  engine.Node
	Supporter UnitRef
}

func (d *SupportDeal) required(o engine.Order) bool {
	return o.Kind == engine.OrderSupport &&
		o.SupportsMove &&
		o.SupportedPower == d.Supported.Power &&
		o.SupportedUnitID == d.Supported.UnitID &&
		o.From == d.From &&
		o.SupportTo == d.To
}

func (d *SupportDeal) AllowedOrders(power engine.Power, legal LegalSet) LegalSet {
	if power != d.Supporter.Power {
		return legal
	}
	restricted := make(LegalSet, len(legal))
	for id, orders := range legal {
		if id != d.Supporter.UnitID {
			restricted[id] = orders
			continue
		}
		kept := make([]engine.Order, 0, 1)
		for _, o := range orders {
			if d.required(o) {
				kept = append(kept, o)
			}
		}
		restricted[id] = kept
	}
	return restricted
}

func (d *SupportDeal) Violations(power engine.Power, submitted map[engine.UnitID]engine.Order, gs *engine.GameState) []Violation {
	if power != d.Supporter.Power {
		return nil
	}
	// The promise dies with the supporter.
	if _, err := gs.UnitPosition(power, d.Supporter.UnitID); err != nil {
		return nil
	}

	if order, ok := submitted[d.Supporter.UnitID]; ok && d.required(order) {
		return nil
	}
	var order *engine.Order
	if o, ok := submitted[d.Supporter.UnitID]; ok {
		order = &o
	}
	return []Violation{{
		Power:  power,
		Deal:   d,
		UnitID: d.Supporter.UnitID,
		Order:  order,
		Reason: "support deal requires the promised support-move order",
	}}
}

func (d *SupportDeal) Describe() string {
	return fmt.Sprintf("support(%s/%s backs %s/%s %s -> %s)",
		d.Supporter.Power, d.Supporter.UnitID,
		d.Supported.Power, d.Supported.UnitID, d.From, d.To)
}
