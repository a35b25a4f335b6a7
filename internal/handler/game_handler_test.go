package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mgriffin/nodewar/internal/model"
)

// --- In-memory repositories ---

type memGameRepo struct {
	mu    sync.Mutex
	games map[string]*model.Game
	seq   int
}

func newMemGameRepo() *memGameRepo {
	return &memGameRepo{games: make(map[string]*model.Game)}
}

func (m *memGameRepo) Create(_ context.Context, name, mapName string, agents json.RawMessage, targetCenters, maxTurns int, seed int64) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	g := &model.Game{
		ID:            fmt.Sprintf("game-%d", m.seq),
		Name:          name,
		MapName:       mapName,
		Agents:        agents,
		TargetCenters: targetCenters,
		MaxTurns:      maxTurns,
		Seed:          seed,
		Status:        model.StatusRunning,
		CreatedAt:     time.Now(),
	}
	m.games[g.ID] = g
	copied := *g
	return &copied, nil
}

func (m *memGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	copied := *g
	return &copied, nil
}

func (m *memGameRepo) ListFinished(_ context.Context, _ int) ([]model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Game
	for _, g := range m.games {
		if g.Status == model.StatusFinished {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memGameRepo) SetFinished(_ context.Context, id, winner string, draw bool, turns int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return fmt.Errorf("game %s not found", id)
	}
	g.Status = model.StatusFinished
	g.Winner = winner
	g.Draw = draw
	g.Turns = turns
	return nil
}

type memTurnRepo struct {
	mu    sync.Mutex
	turns map[string][]model.Turn
}

func newMemTurnRepo() *memTurnRepo {
	return &memTurnRepo{turns: make(map[string][]model.Turn)}
}

func (m *memTurnRepo) SaveTurn(_ context.Context, turn *model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[turn.GameID] = append(m.turns[turn.GameID], *turn)
	return nil
}

func (m *memTurnRepo) ListByGame(_ context.Context, gameID string) ([]model.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Turn(nil), m.turns[gameID]...), nil
}

type memCache struct {
	mu     sync.Mutex
	states map[string]json.RawMessage
	turns  map[string]json.RawMessage
}

func newMemCache() *memCache {
	return &memCache{states: make(map[string]json.RawMessage), turns: make(map[string]json.RawMessage)}
}

func (m *memCache) SetState(_ context.Context, gameID string, state json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[gameID] = state
	return nil
}

func (m *memCache) GetState(_ context.Context, gameID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[gameID], nil
}

func (m *memCache) SetTurn(_ context.Context, gameID string, turn json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[gameID] = turn
	return nil
}

func (m *memCache) GetTurn(_ context.Context, gameID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turns[gameID], nil
}

func (m *memCache) Clear(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, gameID)
	delete(m.turns, gameID)
	return nil
}

func newTestHandler() (*GameHandler, *memGameRepo, *memTurnRepo, *memCache) {
	games := newMemGameRepo()
	turns := newMemTurnRepo()
	cache := newMemCache()
	return NewGameHandler(games, turns, cache, NewHub(), ""), games, turns, cache
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/games", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestCreateGameRunsToCompletion(t *testing.T) {
	h, games, turns, _ := newTestHandler()

	rec := postJSON(t, h.CreateGame, `{
		"name": "smoke",
		"map": "triangle3",
		"agents": {"A": "random", "B": "random", "C": "heuristic"},
		"max_turns": 5,
		"seed": 11
	}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("expected a game ID")
	}
	if resp.Status != model.StatusRunning {
		t.Errorf("expected status running, got %s", resp.Status)
	}

	// The game runs in the background; wait for it to finish.
	deadline := time.Now().Add(5 * time.Second)
	for {
		g, err := games.FindByID(context.Background(), resp.ID)
		if err != nil {
			t.Fatalf("find game: %v", err)
		}
		if g != nil && g.Status == model.StatusFinished {
			if g.Turns == 0 || g.Turns > 5 {
				t.Errorf("turns = %d, want in 1..5", g.Turns)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("game did not finish in time")
		}
		time.Sleep(10 * time.Millisecond)
	}

	history, err := turns.ListByGame(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(history) == 0 {
		t.Error("expected recorded turns")
	}

	// Finished games serve state from the turn history.
	req := httptest.NewRequest(http.MethodGet, "/games/"+resp.ID+"/state", nil)
	req.SetPathValue("id", resp.ID)
	stateRec := httptest.NewRecorder()
	h.GetState(stateRec, req)
	if stateRec.Code != http.StatusOK {
		t.Errorf("expected 200 from GetState, got %d", stateRec.Code)
	}
}

func TestCreateGameRejectsBadInput(t *testing.T) {
	h, _, _, _ := newTestHandler()

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"map": "triangle3"}`},
		{"unknown map", `{"name": "x", "map": "atlantis"}`},
		{"unknown agent", `{"name": "x", "map": "triangle3", "agents": {"A": "psychic"}}`},
		{"power not on map", `{"name": "x", "map": "triangle3", "agents": {"Z": "random"}}`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h.CreateGame, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetGameNotFound(t *testing.T) {
	h, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/games/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	h.GetGame(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetStateFromLiveCache(t *testing.T) {
	h, _, _, cache := newTestHandler()

	state := json.RawMessage(`{"turn": 4}`)
	if err := cache.SetState(context.Background(), "game-7", state); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/games/game-7/state", nil)
	req.SetPathValue("id", "game-7")
	rec := httptest.NewRecorder()
	h.GetState(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		GameID string          `json:"game_id"`
		State  json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.GameID != "game-7" {
		t.Errorf("expected game-7, got %s", resp.GameID)
	}
	if !strings.Contains(string(resp.State), `"turn"`) {
		t.Errorf("unexpected state payload: %s", resp.State)
	}
}

func TestGetLastTurnFromLiveCache(t *testing.T) {
	h, _, _, cache := newTestHandler()

	turn := json.RawMessage(`{"turn": 2, "orders": []}`)
	if err := cache.SetTurn(context.Background(), "game-7", turn); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/games/game-7/turn", nil)
	req.SetPathValue("id", "game-7")
	rec := httptest.NewRecorder()
	h.GetLastTurn(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"orders"`) {
		t.Errorf("unexpected turn payload: %s", rec.Body.String())
	}
}

func TestGetLastTurnFallsBackToHistory(t *testing.T) {
	h, _, turns, _ := newTestHandler()

	saved := &model.Turn{GameID: "game-8", Turn: 3, StateAfter: json.RawMessage(`{}`)}
	if err := turns.SaveTurn(context.Background(), saved); err != nil {
		t.Fatalf("seed turns: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/games/game-8/turn", nil)
	req.SetPathValue("id", "game-8")
	rec := httptest.NewRecorder()
	h.GetLastTurn(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got model.Turn
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Turn != 3 {
		t.Errorf("expected turn 3, got %d", got.Turn)
	}
}

func TestGetStateMissingGame(t *testing.T) {
	h, _, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/games/nope/state", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.GetState(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
