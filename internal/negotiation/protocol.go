package negotiation

import (
	"sort"

	"github.com/mgriffin/nodewar/pkg/engine"
)

// Participant proposes and answers deal proposals. ProposeDeal returns
// nil to skip a pair; AcceptDeal answers a single proposal.
type Participant interface {
	ProposeDeal(gs *engine.GameState, power, target engine.Power) Deal
	AcceptDeal(gs *engine.GameState, power, proposer engine.Power, deal Deal) bool
}

// Protocol runs one pairwise negotiation round per turn: every ordered
// pair of distinct powers (i, j) lets i put at most one deal to j. An
// accepted deal binds both sides until Expire.
type Protocol struct {
	participants map[engine.Power]Participant
	accepted     map[engine.Power][]Deal
}

func NewProtocol(participants map[engine.Power]Participant) *Protocol {
	return &Protocol{
		participants: participants,
		accepted:     make(map[engine.Power][]Deal),
	}
}

// RunTurn executes the proposal round and records accepted deals. A nil
// power list defaults to every registered participant, sorted so the
// pair order is stable from run to run.
func (p *Protocol) RunTurn(gs *engine.GameState, powers []engine.Power) map[engine.Power][]Deal {
	if powers == nil {
		for power := range p.participants {
			powers = append(powers, power)
		}
		sort.Slice(powers, func(i, j int) bool { return powers[i] < powers[j] })
	}

	accepted := make(map[engine.Power][]Deal, len(powers))
	for _, power := range powers {
		accepted[power] = nil
	}

	for _, proposer := range powers {
		proposerPart, ok := p.participants[proposer]
		if !ok {
			continue
		}
		for _, responder := range powers {
			if proposer == responder {
				continue
			}
			responderPart, ok := p.participants[responder]
			if !ok {
				continue
			}
			deal := proposerPart.ProposeDeal(gs, proposer, responder)
			if deal == nil {
				continue
			}
			if responderPart.AcceptDeal(gs, responder, proposer, deal) {
				accepted[proposer] = append(accepted[proposer], deal)
				accepted[responder] = append(accepted[responder], deal)
			}
		}
	}

	p.accepted = accepted
	return accepted
}

// AcceptedDeals returns the deals binding the power this turn.
func (p *Protocol) AcceptedDeals(power engine.Power) []Deal {
	deals := p.accepted[power]
	out := make([]Deal, len(deals))
	copy(out, deals)
	return out
}

// Expire clears all accepted deals after the action phase.
func (p *Protocol) Expire() {
	p.accepted = make(map[engine.Power][]Deal)
}
