package engine

import "fmt"

// OrderKind tags the closed set of order variants.
type OrderKind int

const (
	OrderHold    OrderKind = iota // unit stays in place
	OrderMove                     // unit attempts to relocate to an adjacent node
	OrderSupport                  // unit lends strength to another unit's hold or move
)

func (k OrderKind) String() string {
	switch k {
	case OrderHold:
		return "hold"
	case OrderMove:
		return "move"
	case OrderSupport:
		return "support"
	default:
		return "unknown"
	}
}

// Order is a single order issued to a unit. Exactly one of the variant
// field groups is meaningful, selected by Kind.
type Order struct {
	Kind   OrderKind `json:"kind"`
	Power  Power     `json:"power"`
	UnitID UnitID    `json:"unitId"`

	// Move: destination node.
	To Node `json:"to,omitempty"`

	// Support: the unit being supported, its declared current location,
	// and, when SupportsMove is set, the destination of the move being
	// supported. SupportsMove is an explicit flag rather than an
	// empty-node sentinel so a support-hold can never be confused with a
	// support-move to an oddly named node.
	SupportedPower  Power  `json:"supportedPower,omitempty"`
	SupportedUnitID UnitID `json:"supportedUnitId,omitempty"`
	From            Node   `json:"from,omitempty"`
	SupportsMove    bool   `json:"supportsMove,omitempty"`
	SupportTo       Node   `json:"supportTo,omitempty"`
}

// NewHold orders the unit to stay in place.
func NewHold(power Power, id UnitID) Order {
	return Order{Kind: OrderHold, Power: power, UnitID: id}
}

// NewMove orders the unit to relocate to an adjacent node.
func NewMove(power Power, id UnitID, to Node) Order {
	return Order{Kind: OrderMove, Power: power, UnitID: id, To: to}
}

// NewSupportHold orders the unit to support another unit's hold at from.
func NewSupportHold(power Power, id UnitID, supported UnitKey, from Node) Order {
	return Order{
		Kind:            OrderSupport,
		Power:           power,
		UnitID:          id,
		SupportedPower:  supported.Power,
		SupportedUnitID: supported.UnitID,
		From:            from,
	}
}

// NewSupportMove orders the unit to support another unit's move from
// from to to.
func NewSupportMove(power Power, id UnitID, supported UnitKey, from, to Node) Order {
	return Order{
		Kind:            OrderSupport,
		Power:           power,
		UnitID:          id,
		SupportedPower:  supported.Power,
		SupportedUnitID: supported.UnitID,
		From:            from,
		SupportsMove:    true,
		SupportTo:       to,
	}
}

// Key returns the unit the order belongs to.
func (o Order) Key() UnitKey {
	return UnitKey{o.Power, o.UnitID}
}

// SupportedKey returns the unit a support order assists.
func (o Order) SupportedKey() UnitKey {
	return UnitKey{o.SupportedPower, o.SupportedUnitID}
}

// Describe renders the order in classic notation.
func (o Order) Describe() string {
	switch o.Kind {
	case OrderHold:
		return fmt.Sprintf("%s/%s H", o.Power, o.UnitID)
	case OrderMove:
		return fmt.Sprintf("%s/%s -> %s", o.Power, o.UnitID, o.To)
	case OrderSupport:
		if o.SupportsMove {
			return fmt.Sprintf("%s/%s S %s/%s %s -> %s",
				o.Power, o.UnitID, o.SupportedPower, o.SupportedUnitID, o.From, o.SupportTo)
		}
		return fmt.Sprintf("%s/%s S %s/%s %s H",
			o.Power, o.UnitID, o.SupportedPower, o.SupportedUnitID, o.From)
	default:
		return fmt.Sprintf("%s/%s ???", o.Power, o.UnitID)
	}
}

// OrderOutcome describes how adjudication treated an order.
type OrderOutcome int

const (
	OutcomeSucceeded OrderOutcome = iota // order carried out
	OutcomeBounced                       // move failed to take its destination
	OutcomeVoid                          // support did not match any real action
	OutcomeDislodged                     // the unit was removed from the board
)

func (r OrderOutcome) String() string {
	switch r {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeBounced:
		return "bounced"
	case OutcomeVoid:
		return "void"
	case OutcomeDislodged:
		return "dislodged"
	default:
		return "unknown"
	}
}

// ResolvedOrder pairs an order with its adjudication outcome.
type ResolvedOrder struct {
	Unit    UnitKey      `json:"unit"`
	Order   Order        `json:"order"`
	Outcome OrderOutcome `json:"outcome"`
}
