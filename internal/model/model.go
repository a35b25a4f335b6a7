package model

import (
	"encoding/json"
	"time"
)

// Game statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
)

// Game is one recorded match between agents.
type Game struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	MapName       string          `json:"map_name"`
	Agents        json.RawMessage `json:"agents"` // power -> agent name
	TargetCenters int             `json:"target_centers"`
	MaxTurns      int             `json:"max_turns"`
	Seed          int64           `json:"seed"`
	Status        string          `json:"status"` // running, finished
	Winner        string          `json:"winner,omitempty"`
	Draw          bool            `json:"draw"`
	Turns         int             `json:"turns"`
	CreatedAt     time.Time       `json:"created_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
}

// Turn is one adjudicated round of a game: the orders with their
// outcomes, the units removed, and the state after resolution.
type Turn struct {
	ID         string          `json:"id"`
	GameID     string          `json:"game_id"`
	Turn       int             `json:"turn"`
	Orders     json.RawMessage `json:"orders"`
	Dislodged  json.RawMessage `json:"dislodged,omitempty"`
	StateAfter json.RawMessage `json:"state_after"`
	CreatedAt  time.Time       `json:"created_at"`
}
