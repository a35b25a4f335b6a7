package engine

import "fmt"

// OrderError describes why an order is illegal.
type OrderError struct {
	Order   Order
	Message string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("invalid order %s: %s", e.Order.Describe(), e.Message)
}

// ValidateOrder checks whether an order is legal for the current state:
// the unit exists, moves target adjacent nodes, supports reference a real
// unit at its declared location with reachable geometry, and no unit
// supports itself. The adjudicator does not call this; it exists for
// agents, deal enforcement, and tests that construct orders by hand.
func ValidateOrder(o Order, gs *GameState, m *MapDef) error {
	location, err := gs.UnitPosition(o.Power, o.UnitID)
	if err != nil {
		return &OrderError{o, "no such unit"}
	}

	switch o.Kind {
	case OrderHold:
		return nil
	case OrderMove:
		if !m.HasNode(o.To) {
			return &OrderError{o, fmt.Sprintf("destination %q is not on the map", o.To)}
		}
		if !m.Adjacent(location, o.To) {
			return &OrderError{o, fmt.Sprintf("cannot move from %s to %s", location, o.To)}
		}
		return nil
	case OrderSupport:
		if o.SupportedKey() == o.Key() {
			return &OrderError{o, "a unit cannot support itself"}
		}
		supportedAt, err := gs.UnitPosition(o.SupportedPower, o.SupportedUnitID)
		if err != nil {
			return &OrderError{o, "supported unit does not exist"}
		}
		if supportedAt != o.From {
			return &OrderError{o, fmt.Sprintf("supported unit is at %s, not %s", supportedAt, o.From)}
		}
		if !o.SupportsMove {
			if !m.Adjacent(location, o.From) {
				return &OrderError{o, fmt.Sprintf("cannot support a hold at %s from %s", o.From, location)}
			}
			return nil
		}
		// Supporting a move requires adjacency to the destination, and
		// the supported unit must itself be able to make the move.
		if !m.Adjacent(location, o.SupportTo) {
			return &OrderError{o, fmt.Sprintf("cannot support a move to %s from %s", o.SupportTo, location)}
		}
		if !m.Adjacent(o.From, o.SupportTo) {
			return &OrderError{o, fmt.Sprintf("supported unit cannot reach %s from %s", o.SupportTo, o.From)}
		}
		return nil
	default:
		return &OrderError{o, "unknown order kind"}
	}
}
