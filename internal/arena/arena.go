// Package arena plays complete agent-vs-agent games, recording turns to
// Postgres and mirroring live state to Redis for spectators.
package arena

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/mgriffin/nodewar/internal/agent"
	"github.com/mgriffin/nodewar/internal/model"
	"github.com/mgriffin/nodewar/internal/negotiation"
	"github.com/mgriffin/nodewar/internal/repository"
	"github.com/mgriffin/nodewar/pkg/engine"
)

// Config configures a single agent-vs-agent game.
type Config struct {
	GameName       string
	MapName        string
	Agents         map[engine.Power]string // power -> agent name; missing powers get "heuristic"
	TargetCenters  int                     // 0 = majority of supply centers
	MaxTurns       int                     // 0 = 40
	Seed           int64                   // 0 = random
	ValueModelPath string                  // optional ONNX value model for montecarlo agents
	DryRun         bool                    // skip DB and cache writes
	Observer       Observer                // optional turn-by-turn listener
}

// Observer receives game progress, e.g. for websocket broadcast.
type Observer interface {
	GameStarted(gameID string, gs *engine.GameState)
	TurnResolved(gameID string, turn int, res *engine.Resolution, gs *engine.GameState)
	GameFinished(gameID string, result *engine.GameResult)
}

// Result describes the outcome of a completed arena game.
type Result struct {
	GameID  string         `json:"game_id,omitempty"`
	Winner  string         `json:"winner"` // power name, "" for a draw
	Draw    bool           `json:"draw"`
	Turns   int            `json:"turns"`
	Reason  string         `json:"reason"`
	Centers map[string]int `json:"centers"` // power -> final center count
}

// RunGame plays one full game. Pass nil repos (or set DryRun) to skip
// persistence.
func RunGame(
	ctx context.Context,
	cfg Config,
	games repository.GameRepository,
	turns repository.TurnRepository,
	cache repository.LiveCache,
) (*Result, error) {
	m, err := engine.MapByName(cfg.MapName)
	if err != nil {
		return nil, err
	}
	if cfg.TargetCenters <= 0 {
		cfg.TargetCenters = len(m.SupplyCenters)/2 + 1
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 40
	}
	// Seed 0 means "surprise me": draw a real seed so repeated runs do
	// not replay the same game.
	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63()
	}
	persist := !cfg.DryRun && games != nil

	agents, negotiators, err := buildAgents(cfg, m)
	if err != nil {
		return nil, err
	}

	var gameID string
	if persist {
		agentsJSON, err := json.Marshal(cfg.Agents)
		if err != nil {
			return nil, fmt.Errorf("marshal agent config: %w", err)
		}
		row, err := games.Create(ctx, cfg.GameName, cfg.MapName, agentsJSON, cfg.TargetCenters, cfg.MaxTurns, cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("create arena game: %w", err)
		}
		gameID = row.ID
	}

	game, err := engine.NewGame(m, engine.InitializeState(m), cfg.TargetCenters, cfg.MaxTurns, cfg.Seed)
	if err != nil {
		return nil, err
	}

	var protocol *negotiation.Protocol
	if len(negotiators) > 0 {
		participants := make(map[engine.Power]negotiation.Participant, len(negotiators))
		for power, n := range negotiators {
			participants[power] = n
		}
		protocol = negotiation.NewProtocol(participants)
	}

	if persist && cache != nil {
		if err := cacheState(ctx, cache, gameID, game.State); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to cache initial state")
		}
	}
	if cfg.Observer != nil {
		cfg.Observer.GameStarted(gameID, game.State)
	}

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if result := game.Result(); result != nil {
			return finishGame(ctx, cfg, gameID, result, persist, games, cache)
		}

		runNegotiation(protocol, negotiators, game.State)

		orders := make(map[engine.UnitKey]engine.Order)
		perPower := make(map[engine.Power]map[engine.UnitKey]engine.Order)
		for _, power := range engine.ActivePowers(game.State) {
			a, ok := agents[power]
			if !ok {
				continue
			}
			selected := a.SelectOrders(game.State, m, power)
			perPower[power] = selected
			for key, order := range selected {
				orders[key] = order
			}
		}

		reportViolations(protocol, perPower, game.State, gameID)

		res, err := game.Step(orders)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", game.State.Turn, err)
		}
		if protocol != nil {
			protocol.Expire()
		}

		if persist && turns != nil {
			if err := saveTurn(ctx, turns, gameID, game.State, res); err != nil {
				return nil, err
			}
		}
		if persist && cache != nil {
			if err := cacheState(ctx, cache, gameID, game.State); err != nil {
				log.Warn().Err(err).Str("gameId", gameID).Int("turn", game.State.Turn).Msg("Failed to cache state")
			}
			if err := cacheTurn(ctx, cache, gameID, game.State.Turn, res); err != nil {
				log.Warn().Err(err).Str("gameId", gameID).Int("turn", game.State.Turn).Msg("Failed to cache turn")
			}
		}
		if cfg.Observer != nil {
			cfg.Observer.TurnResolved(gameID, game.State.Turn, res, game.State)
		}
	}
}

// buildAgents constructs one agent per power on the map. Negotiating
// agents are returned separately so the protocol can reach them.
func buildAgents(cfg Config, m *engine.MapDef) (map[engine.Power]agent.Agent, map[engine.Power]*agent.Negotiator, error) {
	var value *agent.ValueModel
	if cfg.ValueModelPath != "" {
		var err error
		value, err = agent.LoadValueModel(cfg.ValueModelPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load value model: %w", err)
		}
	}

	agents := make(map[engine.Power]agent.Agent)
	negotiators := make(map[engine.Power]*agent.Negotiator)
	for i, power := range m.Powers() {
		name, ok := cfg.Agents[power]
		if !ok {
			name = "heuristic"
		}
		// Offset per power so agents sharing a base seed do not mirror
		// each other's choices.
		a, err := agent.ForName(name, m, cfg.Seed+int64(i), value)
		if err != nil {
			return nil, nil, fmt.Errorf("agent for %s: %w", power, err)
		}
		agents[power] = a
		if n, ok := a.(*agent.Negotiator); ok {
			negotiators[power] = n
		}
	}
	return agents, negotiators, nil
}

// runNegotiation runs the pairwise proposal round and hands each
// negotiator the deals now binding it.
func runNegotiation(protocol *negotiation.Protocol, negotiators map[engine.Power]*agent.Negotiator, gs *engine.GameState) {
	if protocol == nil {
		return
	}
	accepted := protocol.RunTurn(gs, nil)
	for power, n := range negotiators {
		n.SetActiveDeals(accepted[power])
	}
}

// reportViolations logs orders that break a deal accepted this turn.
// Enforcement is reputational only; the orders still stand.
func reportViolations(protocol *negotiation.Protocol, perPower map[engine.Power]map[engine.UnitKey]engine.Order, gs *engine.GameState, gameID string) {
	if protocol == nil {
		return
	}
	for power, orders := range perPower {
		byUnit := make(map[engine.UnitID]engine.Order, len(orders))
		for key, order := range orders {
			byUnit[key.UnitID] = order
		}
		for _, deal := range protocol.AcceptedDeals(power) {
			for _, v := range deal.Violations(power, byUnit, gs) {
				log.Warn().
					Str("gameId", gameID).
					Str("power", string(v.Power)).
					Str("deal", v.Deal.Describe()).
					Str("reason", v.Reason).
					Msg("Deal violated")
			}
		}
	}
}

func saveTurn(ctx context.Context, turns repository.TurnRepository, gameID string, gs *engine.GameState, res *engine.Resolution) error {
	ordersJSON, err := json.Marshal(res.Orders)
	if err != nil {
		return fmt.Errorf("marshal orders: %w", err)
	}
	dislodgedJSON, err := json.Marshal(res.Dislodged)
	if err != nil {
		return fmt.Errorf("marshal dislodged: %w", err)
	}
	stateJSON, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := turns.SaveTurn(ctx, &model.Turn{
		GameID:     gameID,
		Turn:       gs.Turn,
		Orders:     ordersJSON,
		Dislodged:  dislodgedJSON,
		StateAfter: stateJSON,
	}); err != nil {
		return fmt.Errorf("save turn %d: %w", gs.Turn, err)
	}
	return nil
}

func cacheState(ctx context.Context, cache repository.LiveCache, gameID string, gs *engine.GameState) error {
	stateJSON, err := json.Marshal(gs)
	if err != nil {
		return err
	}
	return cache.SetState(ctx, gameID, stateJSON)
}

// cacheTurn mirrors the most recent resolution so spectators can read
// the latest orders without a history query.
func cacheTurn(ctx context.Context, cache repository.LiveCache, gameID string, turn int, res *engine.Resolution) error {
	turnJSON, err := json.Marshal(map[string]any{
		"turn":      turn,
		"orders":    res.Orders,
		"dislodged": res.Dislodged,
	})
	if err != nil {
		return err
	}
	return cache.SetTurn(ctx, gameID, turnJSON)
}

func finishGame(
	ctx context.Context,
	cfg Config,
	gameID string,
	result *engine.GameResult,
	persist bool,
	games repository.GameRepository,
	cache repository.LiveCache,
) (*Result, error) {
	out := &Result{
		GameID:  gameID,
		Winner:  string(result.Winner),
		Draw:    result.Draw,
		Turns:   result.Turn,
		Reason:  result.Reason,
		Centers: make(map[string]int, len(result.Centers)),
	}
	for power, count := range result.Centers {
		out.Centers[string(power)] = count
	}

	if persist {
		if err := games.SetFinished(ctx, gameID, out.Winner, out.Draw, out.Turns); err != nil {
			return nil, fmt.Errorf("set finished: %w", err)
		}
		if cache != nil {
			if err := cache.Clear(ctx, gameID); err != nil {
				log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to clear live cache")
			}
		}
	}
	if cfg.Observer != nil {
		cfg.Observer.GameFinished(gameID, result)
	}

	event := log.Info().
		Str("gameId", gameID).
		Str("map", cfg.MapName).
		Int("turns", out.Turns).
		Str("reason", out.Reason)
	if out.Draw {
		event.Msg("Arena game ended as draw")
	} else {
		event.Str("winner", out.Winner).Msg("Arena game won")
	}
	return out, nil
}
