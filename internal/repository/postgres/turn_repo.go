package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mgriffin/nodewar/internal/model"
)

// TurnRepo handles per-turn history database operations.
type TurnRepo struct {
	db *sql.DB
}

// NewTurnRepo creates a TurnRepo.
func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// SaveTurn inserts one adjudicated turn.
func (r *TurnRepo) SaveTurn(ctx context.Context, turn *model.Turn) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO turns (game_id, turn, orders, dislodged, state_after)
		 VALUES ($1, $2, $3, $4, $5)`,
		turn.GameID, turn.Turn, []byte(turn.Orders), []byte(turn.Dislodged), []byte(turn.StateAfter))
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// ListByGame returns a game's turns in order.
func (r *TurnRepo) ListByGame(ctx context.Context, gameID string) ([]model.Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, turn, orders, dislodged, state_after, created_at
		 FROM turns WHERE game_id = $1 ORDER BY turn`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		var dislodged sql.NullString
		if err := rows.Scan(&t.ID, &t.GameID, &t.Turn, &t.Orders, &dislodged, &t.StateAfter, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if dislodged.Valid {
			t.Dislodged = []byte(dislodged.String)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
