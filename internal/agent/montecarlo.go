package agent

import (
	"log"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/mgriffin/nodewar/pkg/engine"
)

// MonteCarloConfig tunes the rollout search. Zero values fall back to
// the defaults below.
type MonteCarloConfig struct {
	Config

	// TopK orders per unit feed the joint sampler.
	TopK int
	// JointSamples is the number of distinct joint order sets to evaluate.
	JointSamples int
	// RolloutHorizon is how many turns each rollout plays ahead.
	RolloutHorizon int
	// RolloutSamples is how many rollouts score each candidate.
	RolloutSamples int
	// OpponentHeuristicProb is the chance an opponent plays the greedy
	// policy instead of random in a rollout turn.
	OpponentHeuristicProb float64
	// Value, when set, replaces the hand-written positional reward with
	// a learned evaluator at the rollout horizon.
	Value *ValueModel
}

// MonteCarlo samples joint orders from each unit's top-scored options
// and keeps the sample with the best average rollout reward.
type MonteCarlo struct {
	rng            *rand.Rand
	topK           int
	jointSamples   int
	rolloutHorizon int
	rolloutSamples int
	heuristicProb  float64
	value          *ValueModel
}

func NewMonteCarlo(cfg MonteCarloConfig) (*MonteCarlo, error) {
	rng, err := cfg.rand()
	if err != nil {
		return nil, err
	}
	a := &MonteCarlo{
		rng:            rng,
		topK:           cfg.TopK,
		jointSamples:   cfg.JointSamples,
		rolloutHorizon: cfg.RolloutHorizon,
		rolloutSamples: cfg.RolloutSamples,
		heuristicProb:  cfg.OpponentHeuristicProb,
		value:          cfg.Value,
	}
	if a.topK <= 0 {
		a.topK = 3
	}
	if a.jointSamples <= 0 {
		a.jointSamples = 30
	}
	if a.rolloutHorizon <= 0 {
		a.rolloutHorizon = 4
	}
	if a.rolloutSamples <= 0 {
		a.rolloutSamples = 3
	}
	return a, nil
}

func (a *MonteCarlo) Name() string { return "montecarlo" }

func (a *MonteCarlo) SelectOrders(gs *engine.GameState, m *engine.MapDef, power engine.Power) map[engine.UnitKey]engine.Order {
	legal := engine.LegalOrders(gs, m, power)
	if len(legal) == 0 {
		return map[engine.UnitKey]engine.Order{}
	}

	values := nodeValues(m)
	top := a.topOrders(gs, m, power, legal, values)
	candidates := a.sampleJointOrders(power, top)
	if len(candidates) == 0 {
		return scoredGreedyOrders(gs, m, power, values, legal)
	}

	bestScore := math.Inf(-1)
	var best map[engine.UnitKey]engine.Order
	for _, candidate := range candidates {
		score := a.evaluate(gs, m, power, candidate, values)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if best == nil {
		return scoredGreedyOrders(gs, m, power, values, legal)
	}
	return best
}

// topOrders keeps each unit's topK orders by orderScore, ties broken by
// enumeration order.
func (a *MonteCarlo) topOrders(
	gs *engine.GameState,
	m *engine.MapDef,
	power engine.Power,
	legal map[engine.UnitID][]engine.Order,
	values map[engine.Node]float64,
) map[engine.UnitID][]engine.Order {
	occupancy := gs.Occupancy()
	owners := centerOwners(gs, m)

	top := make(map[engine.UnitID][]engine.Order, len(legal))
	for id, orders := range legal {
		scored := make([]engine.Order, len(orders))
		copy(scored, orders)
		scores := make(map[string]float64, len(orders))
		for _, o := range scored {
			scores[o.Describe()] = orderScore(gs, power, id, o, values, occupancy, owners)
		}
		sort.SliceStable(scored, func(i, j int) bool {
			return scores[scored[i].Describe()] > scores[scored[j].Describe()]
		})
		k := a.topK
		if k > len(scored) {
			k = len(scored)
		}
		top[id] = scored[:k]
	}
	return top
}

// sampleJointOrders draws up to jointSamples distinct joint order sets,
// giving up after three times that many attempts.
func (a *MonteCarlo) sampleJointOrders(
	power engine.Power,
	top map[engine.UnitID][]engine.Order,
) []map[engine.UnitKey]engine.Order {
	ids := sortedUnitIDs(top)
	if len(ids) == 0 {
		return nil
	}

	var samples []map[engine.UnitKey]engine.Order
	seen := make(map[string]bool)
	maxAttempts := a.jointSamples * 3
	for attempts := 0; len(samples) < a.jointSamples && attempts < maxAttempts; attempts++ {
		orders := make(map[engine.UnitKey]engine.Order, len(ids))
		var sig strings.Builder
		for _, id := range ids {
			options := top[id]
			choice := options[a.rng.Intn(len(options))]
			orders[engine.UnitKey{Power: power, UnitID: id}] = choice
			sig.WriteString(choice.Describe())
			sig.WriteByte('|')
		}
		if seen[sig.String()] {
			continue
		}
		seen[sig.String()] = true
		samples = append(samples, orders)
	}

	if len(samples) == 0 {
		fallback := make(map[engine.UnitKey]engine.Order, len(ids))
		for _, id := range ids {
			options := top[id]
			fallback[engine.UnitKey{Power: power, UnitID: id}] = options[a.rng.Intn(len(options))]
		}
		samples = append(samples, fallback)
	}
	return samples
}

// evaluate averages the terminal reward over rolloutSamples rollouts.
// The candidate plays on the first turn; afterwards the agent falls back
// to the greedy policy while opponents mix greedy and random play.
func (a *MonteCarlo) evaluate(
	gs *engine.GameState,
	m *engine.MapDef,
	power engine.Power,
	candidate map[engine.UnitKey]engine.Order,
	values map[engine.Node]float64,
) float64 {
	total := 0.0
	for sample := 0; sample < a.rolloutSamples; sample++ {
		rollout := gs.Clone()
		for step := 0; step < a.rolloutHorizon; step++ {
			orders := make(map[engine.UnitKey]engine.Order)
			for _, current := range engine.ActivePowers(rollout) {
				var selected map[engine.UnitKey]engine.Order
				switch {
				case current == power && step == 0:
					selected = candidate
				case current == power:
					selected = scoredGreedyOrders(rollout, m, current, values, engine.LegalOrders(rollout, m, current))
				case a.rng.Float64() < a.heuristicProb:
					selected = scoredGreedyOrders(rollout, m, current, values, engine.LegalOrders(rollout, m, current))
				default:
					selected = uniformOrders(a.rng, current, engine.LegalOrders(rollout, m, current))
				}
				for key, order := range selected {
					orders[key] = order
				}
			}
			next, err := engine.Adjudicate(rollout, m, orders)
			if err != nil {
				log.Printf("agent/montecarlo: rollout adjudication failed: %v", err)
				break
			}
			next.Turn = rollout.Turn + 1
			rollout = next
		}
		total += a.reward(rollout, m, power)
	}
	return total / float64(a.rolloutSamples)
}

func (a *MonteCarlo) reward(gs *engine.GameState, m *engine.MapDef, power engine.Power) float64 {
	if a.value != nil {
		v, err := a.value.Evaluate(gs, m, power)
		if err == nil {
			return v
		}
		log.Printf("agent/montecarlo: value model failed, using positional reward: %v", err)
	}
	return positionReward(gs, m, power)
}
