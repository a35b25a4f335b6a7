package engine

import "testing"

func countKinds(orders []Order) (holds, moves, supports int) {
	for _, o := range orders {
		switch o.Kind {
		case OrderHold:
			holds++
		case OrderMove:
			moves++
		case OrderSupport:
			supports++
		}
	}
	return
}

func TestLegalOrders_LineMap(t *testing.T) {
	m := testMap(t, []Node{"a", "b", "c"}, []Edge{{"a", "b"}, {"b", "c"}})
	gs := testState(map[UnitKey]Node{
		{"p1", "u1"}: "a",
		{"p2", "v1"}: "b",
	})

	legal := LegalOrders(gs, m, "p1")
	orders, ok := legal["u1"]
	if !ok {
		t.Fatal("no orders for p1/u1")
	}

	holds, moves, supports := countKinds(orders)
	if holds != 1 {
		t.Errorf("holds = %d, want exactly 1", holds)
	}
	if moves != 1 {
		t.Errorf("moves = %d, want 1 (only b is adjacent)", moves)
	}
	// One support-hold for the neighbor at b. Its moves go to a and c,
	// neither of which is adjacent to the supporter, so no support-moves.
	if supports != 1 {
		t.Errorf("supports = %d, want 1", supports)
	}
	if orders[0].Kind != OrderHold {
		t.Error("hold should come first")
	}
}

func TestLegalOrders_SupportMoveNeedsDestinationAdjacency(t *testing.T) {
	// The supporter at s is not adjacent to the mover's origin o, only to
	// the destination d. Supporting the move is still legal; supporting a
	// hold at o is not.
	m := testMap(t, []Node{"s", "o", "d"}, []Edge{{"o", "d"}, {"s", "d"}})
	gs := testState(map[UnitKey]Node{
		{"p1", "u1"}: "s",
		{"p2", "v1"}: "o",
	})

	orders := LegalOrders(gs, m, "p1")["u1"]
	holds, moves, supports := countKinds(orders)
	if holds != 1 || moves != 1 {
		t.Errorf("holds/moves = %d/%d, want 1/1", holds, moves)
	}
	if supports != 1 {
		t.Fatalf("supports = %d, want 1 (the move o -> d)", supports)
	}
	for _, o := range orders {
		if o.Kind != OrderSupport {
			continue
		}
		if !o.SupportsMove || o.From != "o" || o.SupportTo != "d" {
			t.Errorf("unexpected support %s", o.Describe())
		}
	}
}

func TestLegalOrders_NoSelfSupport(t *testing.T) {
	m := testMap(t, []Node{"a", "b", "c"}, []Edge{{"a", "b"}, {"b", "c"}, {"a", "c"}})
	gs := testState(map[UnitKey]Node{{"p1", "u1"}: "a"})

	orders := LegalOrders(gs, m, "p1")["u1"]
	for _, o := range orders {
		if o.Kind == OrderSupport {
			t.Errorf("lone unit has nobody to support, got %s", o.Describe())
		}
	}
}

func TestLegalOrders_SupportsOwnAndEnemyUnits(t *testing.T) {
	m := testMap(t, []Node{"a", "b", "c"}, []Edge{{"a", "b"}, {"b", "c"}, {"a", "c"}})
	gs := testState(map[UnitKey]Node{
		{"p1", "u1"}: "a",
		{"p1", "u2"}: "b",
		{"p2", "v1"}: "c",
	})

	orders := LegalOrders(gs, m, "p1")["u1"]
	var supportedKeys []UnitKey
	for _, o := range orders {
		if o.Kind == OrderSupport && !o.SupportsMove {
			supportedKeys = append(supportedKeys, o.SupportedKey())
		}
	}
	if len(supportedKeys) != 2 {
		t.Fatalf("support-holds for %v, want both the ally and the enemy", supportedKeys)
	}
}

func TestLegalOrders_EmptyPower(t *testing.T) {
	m := TriangleMap()
	gs := InitializeState(m)

	if got := LegalOrders(gs, m, "Z"); len(got) != 0 {
		t.Errorf("absent power should get an empty mapping, got %v", got)
	}
}

func TestLegalOrders_AllLegalOnStarterMaps(t *testing.T) {
	for _, m := range []*MapDef{TriangleMap(), SampleMap()} {
		gs := InitializeState(m)
		for _, power := range m.Powers() {
			for id, orders := range LegalOrders(gs, m, power) {
				if len(orders) == 0 {
					t.Errorf("%s: unit %s/%s has no orders", m.Name, power, id)
				}
				for _, o := range orders {
					if err := ValidateOrder(o, gs, m); err != nil {
						t.Errorf("%s: enumerated order fails validation: %v", m.Name, err)
					}
				}
			}
		}
	}
}
