package handler

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mgriffin/nodewar/internal/agent"
	"github.com/mgriffin/nodewar/internal/arena"
	"github.com/mgriffin/nodewar/internal/model"
	"github.com/mgriffin/nodewar/internal/repository"
	"github.com/mgriffin/nodewar/pkg/engine"
)

// startTimeout bounds how long CreateGame waits for the arena goroutine
// to insert the game row before giving up on the request.
const startTimeout = 10 * time.Second

// GameHandler handles game endpoints. Games are played by agents; the
// HTTP surface starts them and lets spectators inspect progress.
type GameHandler struct {
	games          repository.GameRepository
	turns          repository.TurnRepository
	cache          repository.LiveCache
	hub            *Hub
	valueModelPath string
}

// NewGameHandler creates a GameHandler. valueModelPath may be empty;
// when set, montecarlo agents in launched games use the ONNX model.
func NewGameHandler(games repository.GameRepository, turns repository.TurnRepository, cache repository.LiveCache, hub *Hub, valueModelPath string) *GameHandler {
	return &GameHandler{games: games, turns: turns, cache: cache, hub: hub, valueModelPath: valueModelPath}
}

// CreateGame handles POST /api/v1/games. It starts an agent-vs-agent
// game in the background and returns its ID once the row exists.
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string            `json:"name"`
		Map           string            `json:"map"`
		Agents        map[string]string `json:"agents,omitempty"`
		TargetCenters int               `json:"target_centers,omitempty"`
		MaxTurns      int               `json:"max_turns,omitempty"`
		Seed          int64             `json:"seed,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Map == "" {
		req.Map = "sample4"
	}

	cfg := arena.Config{
		GameName:       req.Name,
		MapName:        req.Map,
		Agents:         make(map[engine.Power]string, len(req.Agents)),
		TargetCenters:  req.TargetCenters,
		MaxTurns:       req.MaxTurns,
		Seed:           req.Seed,
		ValueModelPath: h.valueModelPath,
	}
	for power, name := range req.Agents {
		cfg.Agents[engine.Power(power)] = name
	}
	if err := validateConfig(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	started := make(chan string, 1)
	failed := make(chan error, 1)
	cfg.Observer = &startNotifier{next: NewGameBroadcaster(h.hub), started: started}

	go func() {
		result, err := arena.RunGame(context.Background(), cfg, h.games, h.turns, h.cache)
		if err != nil {
			failed <- err
			log.Error().Err(err).Str("name", cfg.GameName).Msg("Arena game failed")
			return
		}
		log.Info().Str("gameId", result.GameID).Int("turns", result.Turns).Msg("Arena game complete")
	}()

	select {
	case gameID := <-started:
		writeJSON(w, http.StatusAccepted, map[string]string{"id": gameID, "status": model.StatusRunning})
	case err := <-failed:
		writeError(w, http.StatusInternalServerError, err.Error())
	case <-time.After(startTimeout):
		writeError(w, http.StatusGatewayTimeout, "timed out waiting for game to start")
	}
}

// ListGames handles GET /api/v1/games. Only finished games are listed.
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListFinished(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// ListTurns handles GET /api/v1/games/{id}/turns
func (h *GameHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	game, err := h.games.FindByID(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	turns, err := h.turns.ListByGame(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

// GetState handles GET /api/v1/games/{id}/state. Running games serve
// live state from the cache, finished games the last recorded turn.
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	state, err := h.cache.GetState(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if state == nil {
		turns, err := h.turns.ListByGame(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(turns) == 0 {
			writeError(w, http.StatusNotFound, "no state for game")
			return
		}
		state = turns[len(turns)-1].StateAfter
	}
	writeJSON(w, http.StatusOK, map[string]any{"game_id": gameID, "state": state})
}

// GetLastTurn handles GET /api/v1/games/{id}/turn. Running games serve
// the most recent resolution from the cache, finished games the last
// recorded turn row.
func (h *GameHandler) GetLastTurn(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	turn, err := h.cache.GetTurn(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if turn == nil {
		turns, err := h.turns.ListByGame(r.Context(), gameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(turns) == 0 {
			writeError(w, http.StatusNotFound, "no turns for game")
			return
		}
		writeJSON(w, http.StatusOK, turns[len(turns)-1])
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"game_id": gameID, "turn": turn})
}

// validateConfig rejects bad maps and agent names up front so the
// client sees a 400 instead of a background failure.
func validateConfig(cfg arena.Config) error {
	m, err := engine.MapByName(cfg.MapName)
	if err != nil {
		return err
	}
	powers := m.Powers()
	for power, name := range cfg.Agents {
		if !slices.Contains(powers, power) {
			return fmt.Errorf("power %q is not on map %q", power, cfg.MapName)
		}
		if _, err := agent.ForName(name, m, 0, nil); err != nil {
			return err
		}
	}
	return nil
}

// startNotifier reports the created game ID on its channel and then
// forwards every event to the wrapped observer.
type startNotifier struct {
	next    arena.Observer
	started chan<- string
}

func (n *startNotifier) GameStarted(gameID string, gs *engine.GameState) {
	n.started <- gameID
	n.next.GameStarted(gameID, gs)
}

func (n *startNotifier) TurnResolved(gameID string, turn int, res *engine.Resolution, gs *engine.GameState) {
	n.next.TurnResolved(gameID, turn, res, gs)
}

func (n *startNotifier) GameFinished(gameID string, result *engine.GameResult) {
	n.next.GameFinished(gameID, result)
}
