package agent

import (
	"log"
	"math"
	"math/rand"
	"sort"

	"github.com/mgriffin/nodewar/internal/negotiation"
	"github.com/mgriffin/nodewar/pkg/engine"
)

// NegotiatorConfig tunes the baseline negotiating agent. Zero values
// fall back to the defaults below. Map is required: candidate deals are
// generated against its geometry.
type NegotiatorConfig struct {
	Config

	Map *engine.MapDef
	// Epsilon is the minimum value improvement before proposing a deal.
	Epsilon float64
	// DealSamples bounds how many no-enter and support candidates are
	// drawn per proposal round.
	DealSamples int
	// RolloutHorizon and RolloutSamples shape the value estimate.
	RolloutHorizon int
	RolloutSamples int
	// OpponentHeuristicProb is the chance an opponent plays greedy
	// instead of random inside a rollout turn.
	OpponentHeuristicProb float64
}

// Negotiator proposes and accepts one-turn deals when rollouts say the
// deal improves its own expected position, and plays a greedy policy
// restricted by whatever deals it is currently bound to.
type Negotiator struct {
	rng            *rand.Rand
	m              *engine.MapDef
	epsilon        float64
	dealSamples    int
	rolloutHorizon int
	rolloutSamples int
	heuristicProb  float64

	activeDeals []negotiation.Deal
}

func NewNegotiator(cfg NegotiatorConfig) (*Negotiator, error) {
	rng, err := cfg.rand()
	if err != nil {
		return nil, err
	}
	a := &Negotiator{
		rng:            rng,
		m:              cfg.Map,
		epsilon:        cfg.Epsilon,
		dealSamples:    cfg.DealSamples,
		rolloutHorizon: cfg.RolloutHorizon,
		rolloutSamples: cfg.RolloutSamples,
		heuristicProb:  cfg.OpponentHeuristicProb,
	}
	if a.epsilon == 0 {
		a.epsilon = 0.1
	}
	if a.dealSamples <= 0 {
		a.dealSamples = 4
	}
	if a.rolloutHorizon <= 0 {
		a.rolloutHorizon = 4
	}
	if a.rolloutSamples <= 0 {
		a.rolloutSamples = 8
	}
	return a, nil
}

func (a *Negotiator) Name() string { return "negotiator" }

// SetActiveDeals stores the deals accepted this turn; SelectOrders will
// not submit orders they prohibit.
func (a *Negotiator) SetActiveDeals(deals []negotiation.Deal) {
	a.activeDeals = append([]negotiation.Deal(nil), deals...)
}

func (a *Negotiator) SelectOrders(gs *engine.GameState, m *engine.MapDef, power engine.Power) map[engine.UnitKey]engine.Order {
	values := nodeValues(m)
	legal := engine.LegalOrders(gs, m, power)
	restricted, ok := restrictLegal(power, legal, a.activeDeals)
	if !ok {
		// An impossible deal set falls back to unrestricted play rather
		// than leaving units orderless.
		restricted = legal
	}
	return scoredGreedyOrders(gs, m, power, values, restricted)
}

// ProposeDeal returns the candidate deal with the best estimated value,
// provided it beats playing without a deal by at least epsilon.
func (a *Negotiator) ProposeDeal(gs *engine.GameState, power, target engine.Power) negotiation.Deal {
	base := a.estimateValue(gs, power, nil)
	bestValue := base
	var best negotiation.Deal
	for _, deal := range a.candidateDeals(gs, power, target) {
		if value := a.estimateValue(gs, power, deal); value > bestValue+a.epsilon {
			bestValue = value
			best = deal
		}
	}
	return best
}

// AcceptDeal accepts when the deal strictly improves the responder's
// estimated value.
func (a *Negotiator) AcceptDeal(gs *engine.GameState, power, proposer engine.Power, deal negotiation.Deal) bool {
	return a.estimateValue(gs, power, deal) > a.estimateValue(gs, power, nil)
}

// candidateDeals assembles a peace deal, sampled no-enter deals over the
// power's units and centers, and sampled support deals backing the
// target's possible moves.
func (a *Negotiator) candidateDeals(gs *engine.GameState, power, target engine.Power) []negotiation.Deal {
	deals := []negotiation.Deal{negotiation.NewPeaceDeal(power, target, gs)}

	protected := make(map[engine.Node]bool)
	for _, node := range gs.Units[power] {
		protected[node] = true
	}
	for center, owner := range centerOwners(gs, a.m) {
		if owner == power {
			protected[center] = true
		}
	}
	nodes := make([]engine.Node, 0, len(protected))
	for node := range protected {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	for _, idx := range a.sampleIndices(len(nodes)) {
		deals = append(deals, &negotiation.NoEnterDeal{I: power, J: target, Node: nodes[idx]})
	}

	return append(deals, a.supportDeals(gs, power, target)...)
}

// supportDeals samples from the supporter's legal support-moves that
// back the target power's units.
func (a *Negotiator) supportDeals(gs *engine.GameState, power, target engine.Power) []negotiation.Deal {
	var candidates []negotiation.Deal
	legal := engine.LegalOrders(gs, a.m, power)
	for _, id := range sortedUnitIDs(legal) {
		for _, o := range legal[id] {
			if o.Kind != engine.OrderSupport || !o.SupportsMove || o.SupportedPower != target {
				continue
			}
			candidates = append(candidates, &negotiation.SupportDeal{
				I:         power,
				J:         target,
				Supported: negotiation.UnitRef{Power: o.SupportedPower, UnitID: o.SupportedUnitID},
				From:      o.From,
				To:        o.SupportTo,
				Supporter: negotiation.UnitRef{Power: power, UnitID: id},
			})
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sampled := make([]negotiation.Deal, 0, a.dealSamples)
	for _, idx := range a.sampleIndices(len(candidates)) {
		sampled = append(sampled, candidates[idx])
	}
	return sampled
}

// sampleIndices draws up to dealSamples distinct indices from [0, n).
func (a *Negotiator) sampleIndices(n int) []int {
	if n == 0 {
		return nil
	}
	k := a.dealSamples
	if k > n {
		k = n
	}
	return a.rng.Perm(n)[:k]
}

// estimateValue scores the power's expected position after rollouts in
// which the deal, when present, binds every power on the first turn. A
// deal that leaves any unit with no legal order is worthless.
func (a *Negotiator) estimateValue(gs *engine.GameState, power engine.Power, deal negotiation.Deal) float64 {
	if deal != nil && !a.dealHasValidOrders(gs, deal) {
		return math.Inf(-1)
	}

	values := nodeValues(a.m)
	total := 0.0
	for sample := 0; sample < a.rolloutSamples; sample++ {
		rollout := gs.Clone()
		for step := 0; step < a.rolloutHorizon; step++ {
			var deals []negotiation.Deal
			if deal != nil && step == 0 {
				deals = []negotiation.Deal{deal}
			}
			orders := make(map[engine.UnitKey]engine.Order)
			for _, current := range engine.ActivePowers(rollout) {
				legal := engine.LegalOrders(rollout, a.m, current)
				restricted, ok := restrictLegal(current, legal, deals)
				if !ok {
					restricted = legal
				}
				var selected map[engine.UnitKey]engine.Order
				if current == power || a.rng.Float64() < a.heuristicProb {
					selected = scoredGreedyOrders(rollout, a.m, current, values, restricted)
				} else {
					selected = uniformOrders(a.rng, current, restricted)
				}
				for key, order := range selected {
					orders[key] = order
				}
			}
			next, err := engine.Adjudicate(rollout, a.m, orders)
			if err != nil {
				log.Printf("agent/negotiator: rollout adjudication failed: %v", err)
				break
			}
			next.Turn = rollout.Turn + 1
			rollout = next
		}
		total += positionReward(rollout, a.m, power)
	}
	return total / float64(a.rolloutSamples)
}

// dealHasValidOrders checks the deal leaves every active power's units
// at least one legal order.
func (a *Negotiator) dealHasValidOrders(gs *engine.GameState, deal negotiation.Deal) bool {
	for _, power := range engine.ActivePowers(gs) {
		legal := engine.LegalOrders(gs, a.m, power)
		if _, ok := restrictLegal(power, legal, []negotiation.Deal{deal}); !ok {
			return false
		}
	}
	return true
}

// restrictLegal applies each deal's restriction in turn. The second
// return is false when any unit ends up with zero allowed orders.
func restrictLegal(power engine.Power, legal map[engine.UnitID][]engine.Order, deals []negotiation.Deal) (map[engine.UnitID][]engine.Order, bool) {
	restricted := negotiation.LegalSet(legal)
	for _, deal := range deals {
		restricted = deal.AllowedOrders(power, restricted)
	}
	for _, orders := range restricted {
		if len(orders) == 0 {
			return nil, false
		}
	}
	return restricted, true
}
