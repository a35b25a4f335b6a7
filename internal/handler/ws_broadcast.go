package handler

import (
	"github.com/mgriffin/nodewar/pkg/engine"
)

// GameBroadcaster implements arena.Observer over the WebSocket hub so
// spectators see each turn as it resolves.
type GameBroadcaster struct {
	hub *Hub
}

// NewGameBroadcaster creates a GameBroadcaster.
func NewGameBroadcaster(hub *Hub) *GameBroadcaster {
	return &GameBroadcaster{hub: hub}
}

func (b *GameBroadcaster) GameStarted(gameID string, gs *engine.GameState) {
	if gameID == "" {
		return
	}
	b.hub.BroadcastToGame(gameID, WSEvent{
		Type:   EventGameStarted,
		GameID: gameID,
		Data:   map[string]any{"state": gs},
	})
}

func (b *GameBroadcaster) TurnResolved(gameID string, turn int, res *engine.Resolution, gs *engine.GameState) {
	if gameID == "" {
		return
	}
	b.hub.BroadcastToGame(gameID, WSEvent{
		Type:   EventTurnResolved,
		GameID: gameID,
		Data: map[string]any{
			"turn":      turn,
			"orders":    res.Orders,
			"dislodged": res.Dislodged,
			"state":     gs,
		},
	})
}

func (b *GameBroadcaster) GameFinished(gameID string, result *engine.GameResult) {
	if gameID == "" {
		return
	}
	b.hub.BroadcastToGame(gameID, WSEvent{
		Type:   EventGameEnded,
		GameID: gameID,
		Data:   result,
	})
}
