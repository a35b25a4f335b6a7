package engine

import (
	"reflect"
	"testing"
)

func TestInitializeState(t *testing.T) {
	m := TriangleMap()
	gs := InitializeState(m)

	if gs.Turn != 0 {
		t.Errorf("starting turn = %d, want 0", gs.Turn)
	}
	for power, homes := range m.HomeCenters {
		for _, home := range homes {
			if got := gs.Units[power][UnitID(home)]; got != home {
				t.Errorf("power %s should start with a unit on %s, got %s", power, home, got)
			}
			if gs.CenterOwner[home] != power {
				t.Errorf("home center %s should start owned by %s", home, power)
			}
		}
	}
	for _, neutral := range []Node{"N1", "N2", "N3", "N4", "X"} {
		if owner := gs.CenterOwner[neutral]; owner != Neutral {
			t.Errorf("center %s should start unowned, got %s", neutral, owner)
		}
	}
}

func TestGame_Step_CapturesCenterByOccupation(t *testing.T) {
	m := mustMap(NewMap("mini",
		[]Node{"a", "b", "c"},
		[]Edge{{"a", "b"}, {"b", "c"}},
		[]Node{"a", "b", "c"},
		map[Power][]Node{"p1": {"a"}, "p2": {"c"}},
	))
	g, err := NewGame(m, InitializeState(m), 3, 10, 1)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	if _, err := g.Step(map[UnitKey]Order{
		{"p1", "a"}: NewMove("p1", "a", "b"),
	}); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if g.State.CenterOwner["b"] != "p1" {
		t.Errorf("b should be captured by p1, owned by %q", g.State.CenterOwner["b"])
	}
	if g.State.CenterOwner["a"] != "p1" {
		t.Error("vacating a home center must not forfeit ownership")
	}
	if g.State.Turn != 1 {
		t.Errorf("turn = %d, want 1", g.State.Turn)
	}
	if g.Result() != nil {
		t.Error("game should still be running at 2 of 3 centers")
	}
}

func TestGame_Step_EliminatesUnitlessPower(t *testing.T) {
	m := mustMap(NewMap("mini",
		[]Node{"a", "b", "c"},
		[]Edge{{"a", "c"}, {"b", "c"}, {"a", "b"}},
		[]Node{"a", "b", "c"},
		map[Power][]Node{"p1": {"a", "b"}, "p2": {"c"}},
	))
	g, err := NewGame(m, InitializeState(m), 3, 10, 1)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	res, err := g.Step(map[UnitKey]Order{
		{"p1", "a"}: NewMove("p1", "a", "c"),
		{"p1", "b"}: NewSupportMove("p1", "b", UnitKey{"p1", "a"}, "a", "c"),
	})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}

	if len(res.Dislodged) != 1 {
		t.Fatalf("Dislodged = %v, want the defender of c", res.Dislodged)
	}
	if !g.Eliminated("p2") {
		t.Error("p2 lost its last unit and should be eliminated")
	}
	if _, ok := g.State.Units["p2"]; ok {
		t.Error("eliminated power should be removed from the unit table")
	}

	result := g.Result()
	if result == nil {
		t.Fatal("p1 owns all three centers and should have won")
	}
	if result.Winner != "p1" || result.Draw || result.Reason != ReasonTargetCenters {
		t.Errorf("result = %+v, want p1 winning on centers", result)
	}
}

func TestGame_Result_MaxTurns(t *testing.T) {
	m := mustMap(NewMap("mini",
		[]Node{"a", "b", "c"},
		[]Edge{{"a", "b"}, {"b", "c"}},
		[]Node{"a", "b", "c"},
		map[Power][]Node{"p1": {"a"}, "p2": {"c"}},
	))

	t.Run("unique leader wins", func(t *testing.T) {
		gs := InitializeState(m)
		gs.CenterOwner["b"] = "p1"
		g, err := NewGame(m, gs, 10, 0, 1)
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		result := g.Result()
		if result == nil {
			t.Fatal("turn cap reached, expected a result")
		}
		if result.Winner != "p1" || result.Draw || result.Reason != ReasonMaxTurns {
			t.Errorf("result = %+v, want p1 winning on the turn cap", result)
		}
	})

	t.Run("tied leaders draw", func(t *testing.T) {
		g, err := NewGame(m, InitializeState(m), 10, 0, 1)
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		result := g.Result()
		if result == nil {
			t.Fatal("turn cap reached, expected a result")
		}
		if !result.Draw || result.Winner != Neutral {
			t.Errorf("result = %+v, want a draw", result)
		}
	})
}

func TestGame_Run_TerminatesAndIsSeedDeterministic(t *testing.T) {
	run := func(seed int64) *GameResult {
		m := TriangleMap()
		g, err := NewGame(m, InitializeState(m), 8, 40, seed)
		if err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		result, err := g.Run(nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result
	}

	first := run(7)
	if first.Reason != ReasonTargetCenters && first.Reason != ReasonMaxTurns {
		t.Errorf("unexpected stop reason %q", first.Reason)
	}
	if first.Turn > 40 {
		t.Errorf("game ran past the turn cap: %d", first.Turn)
	}

	if again := run(7); !reflect.DeepEqual(first, again) {
		t.Errorf("same seed should replay identically: %+v vs %+v", first, again)
	}
}

func TestActivePowers_Sorted(t *testing.T) {
	gs := InitializeState(SampleMap())
	got := ActivePowers(gs)
	want := []Power{"A", "B", "C", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ActivePowers = %v, want %v", got, want)
	}

	gs.Units["B"] = map[UnitID]Node{}
	got = ActivePowers(gs)
	want = []Power{"A", "C", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ActivePowers after emptying B = %v, want %v", got, want)
	}
}
