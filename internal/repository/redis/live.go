package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key patterns for live game data.
func stateKey(gameID string) string { return "game:" + gameID + ":state" }
func turnKey(gameID string) string  { return "game:" + gameID + ":turn" }

// SetState stores the live board state JSON.
func (c *Client) SetState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), 0).Err()
}

// GetState retrieves the live board state JSON, or nil when absent.
func (c *Client) GetState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetTurn stores the most recent adjudicated turn JSON.
func (c *Client) SetTurn(ctx context.Context, gameID string, turn json.RawMessage) error {
	return c.rdb.Set(ctx, turnKey(gameID), []byte(turn), 0).Err()
}

// GetTurn retrieves the most recent adjudicated turn JSON, or nil when absent.
func (c *Client) GetTurn(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, turnKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game turn: %w", err)
	}
	return json.RawMessage(data), nil
}

// Clear drops all live data for a game once it finishes.
func (c *Client) Clear(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, stateKey(gameID), turnKey(gameID)).Err()
}
