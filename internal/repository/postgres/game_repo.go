package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mgriffin/nodewar/internal/model"
)

// GameRepo handles game record database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

// Create inserts a new running game.
func (r *GameRepo) Create(ctx context.Context, name, mapName string, agents json.RawMessage, targetCenters, maxTurns int, seed int64) (*model.Game, error) {
	var g model.Game
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO games (name, map_name, agents, target_centers, max_turns, seed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, name, map_name, agents, target_centers, max_turns, seed, status, draw, turns, created_at`,
		name, mapName, []byte(agents), targetCenters, maxTurns, seed,
	).Scan(&g.ID, &g.Name, &g.MapName, &g.Agents, &g.TargetCenters, &g.MaxTurns, &g.Seed, &g.Status, &g.Draw, &g.Turns, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return &g, nil
}

// FindByID returns a game by ID, or nil if it does not exist.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var g model.Game
	var winner sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, map_name, agents, target_centers, max_turns, seed, status, winner, draw, turns, created_at, finished_at
		 FROM games WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.MapName, &g.Agents, &g.TargetCenters, &g.MaxTurns, &g.Seed, &g.Status, &winner, &g.Draw, &g.Turns, &g.CreatedAt, &g.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	g.Winner = winner.String
	return &g, nil
}

// ListFinished returns finished games, most recent first.
func (r *GameRepo) ListFinished(ctx context.Context, limit int) ([]model.Game, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, map_name, agents, target_centers, max_turns, seed, status, winner, draw, turns, created_at, finished_at
		 FROM games WHERE status = 'finished'
		 ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list finished games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		var winner sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &g.MapName, &g.Agents, &g.TargetCenters, &g.MaxTurns, &g.Seed, &g.Status, &winner, &g.Draw, &g.Turns, &g.CreatedAt, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Winner = winner.String
		games = append(games, g)
	}
	return games, rows.Err()
}

// SetFinished marks a game finished with its outcome.
func (r *GameRepo) SetFinished(ctx context.Context, id, winner string, draw bool, turns int) error {
	var winnerVal any
	if winner != "" {
		winnerVal = winner
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'finished', winner = $2, draw = $3, turns = $4, finished_at = now()
		 WHERE id = $1`, id, winnerVal, draw, turns)
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	return nil
}
