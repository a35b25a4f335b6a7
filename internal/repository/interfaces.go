package repository

import (
	"context"
	"encoding/json"

	"github.com/mgriffin/nodewar/internal/model"
)

// GameRepository defines game record operations.
type GameRepository interface {
	Create(ctx context.Context, name, mapName string, agents json.RawMessage, targetCenters, maxTurns int, seed int64) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListFinished(ctx context.Context, limit int) ([]model.Game, error)
	SetFinished(ctx context.Context, id, winner string, draw bool, turns int) error
}

// TurnRepository defines per-turn history operations.
type TurnRepository interface {
	SaveTurn(ctx context.Context, turn *model.Turn) error
	ListByGame(ctx context.Context, gameID string) ([]model.Turn, error)
}

// LiveCache defines live game state operations (Redis). Spectators read
// from here while a game is in progress.
type LiveCache interface {
	SetState(ctx context.Context, gameID string, state json.RawMessage) error
	GetState(ctx context.Context, gameID string) (json.RawMessage, error)
	SetTurn(ctx context.Context, gameID string, turn json.RawMessage) error
	GetTurn(ctx context.Context, gameID string) (json.RawMessage, error)
	Clear(ctx context.Context, gameID string) error
}
