package engine

import (
	"errors"
	"testing"
)

func TestGameState_Clone_Independent(t *testing.T) {
	gs := InitializeState(TriangleMap())
	c := gs.Clone()

	if c.Turn != gs.Turn {
		t.Fatal("cloned turn does not match original")
	}

	// Mutating the original's units must not touch the clone
	gs.Units["A"]["A1"] = "X"
	if c.Units["A"]["A1"] != "A1" {
		t.Error("clone units should be independent of original")
	}

	// Mutating the clone's centers must not touch the original
	c.CenterOwner["N1"] = "B"
	if gs.CenterOwner["N1"] != Neutral {
		t.Error("original center ownership should be independent of clone")
	}

	// Deleting a power from the original must not touch the clone
	delete(gs.Units, "C")
	if _, ok := c.Units["C"]; !ok {
		t.Error("clone should retain power C after original deletes it")
	}
}

func TestGameState_AllUnits_SortedStable(t *testing.T) {
	gs := InitializeState(SampleMap())

	first := gs.AllUnits()
	second := gs.AllUnits()
	if len(first) != 8 {
		t.Fatalf("expected 8 units, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("AllUnits order should be stable across calls")
		}
	}
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if prev.Power > cur.Power || (prev.Power == cur.Power && prev.UnitID >= cur.UnitID) {
			t.Fatalf("AllUnits not sorted at %d: %v then %v", i, prev, cur)
		}
	}
}

func TestGameState_UnitPosition(t *testing.T) {
	gs := InitializeState(TriangleMap())

	node, err := gs.UnitPosition("A", "A1")
	if err != nil {
		t.Fatalf("UnitPosition: %v", err)
	}
	if node != "A1" {
		t.Errorf("unit A/A1 should start at A1, got %s", node)
	}

	if _, err := gs.UnitPosition("A", "ghost"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("missing unit should return ErrUnknownUnit, got %v", err)
	}
	if _, err := gs.UnitPosition("Z", "A1"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("missing power should return ErrUnknownUnit, got %v", err)
	}
}

func TestGameState_UnitAt_And_Counts(t *testing.T) {
	gs := InitializeState(TriangleMap())

	key, ok := gs.UnitAt("B2")
	if !ok || key.Power != "B" || key.UnitID != "B2" {
		t.Errorf("UnitAt(B2) = %v %v", key, ok)
	}
	if _, ok := gs.UnitAt("X"); ok {
		t.Error("contested center X starts empty")
	}

	if gs.UnitCount("A") != 2 {
		t.Errorf("power A should start with 2 units, got %d", gs.UnitCount("A"))
	}
	if gs.CenterCount("A") != 2 {
		t.Errorf("power A should start owning 2 centers, got %d", gs.CenterCount("A"))
	}

	counts := gs.CenterCounts()
	for _, p := range []Power{"A", "B", "C"} {
		if counts[p] != 2 {
			t.Errorf("power %s center count = %d, want 2", p, counts[p])
		}
	}
	if _, ok := counts[Neutral]; ok {
		t.Error("neutral centers must not appear in CenterCounts")
	}
}

func TestGameState_CenterCount_NeutralIsZero(t *testing.T) {
	gs := InitializeState(TriangleMap())
	if got := gs.CenterCount(Neutral); got != 0 {
		t.Errorf("CenterCount(Neutral) = %d, want 0", got)
	}
}
