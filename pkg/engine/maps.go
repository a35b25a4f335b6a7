package engine

import "fmt"

// TriangleMap returns the three-power starter map: each power holds two
// home centers on one side of a triangle of neutral centers around a
// contested middle node.
func TriangleMap() *MapDef {
	return mustMap(NewMap(
		"triangle3",
		[]Node{"A1", "A2", "B1", "B2", "C1", "C2", "N1", "N2", "N3", "N4", "X"},
		[]Edge{
			{"A1", "A2"}, {"A1", "N1"}, {"A2", "N2"}, {"N1", "N2"},
			{"N1", "X"}, {"N2", "X"},
			{"B1", "B2"}, {"B1", "N2"}, {"B2", "N3"}, {"N2", "N3"}, {"N3", "X"},
			{"C1", "C2"}, {"C1", "N3"}, {"C2", "N4"}, {"N3", "N4"}, {"N4", "X"},
			{"N4", "N1"},
		},
		[]Node{"A1", "A2", "B1", "B2", "C1", "C2", "N1", "N2", "N3", "N4", "X"},
		map[Power][]Node{
			"A": {"A1", "A2"},
			"B": {"B1", "B2"},
			"C": {"C1", "C2"},
		},
	))
}

// SampleMap returns the four-power starter map: home pairs on a ring of
// neutral centers, a contested hub X, and a dead-end prize Y.
func SampleMap() *MapDef {
	return mustMap(NewMap(
		"sample4",
		[]Node{"A1", "A2", "B1", "B2", "C1", "C2", "D1", "D2", "N1", "N2", "N3", "N4", "X", "Y"},
		[]Edge{
			{"A1", "A2"}, {"A1", "N1"}, {"A1", "N4"}, {"A2", "N1"},
			{"B1", "B2"}, {"B1", "N1"}, {"B1", "N2"}, {"B2", "N2"},
			{"C1", "C2"}, {"C1", "N2"}, {"C1", "N3"}, {"C2", "N3"},
			{"D1", "D2"}, {"D1", "N3"}, {"D1", "N4"}, {"D2", "N4"},
			{"N1", "N2"}, {"N2", "N3"}, {"N3", "N4"}, {"N4", "N1"},
			{"N1", "X"}, {"N2", "X"}, {"N3", "X"}, {"N4", "X"},
			{"X", "Y"},
		},
		[]Node{"A1", "A2", "B1", "B2", "C1", "C2", "D1", "D2", "N1", "N2", "N3", "N4", "X", "Y"},
		map[Power][]Node{
			"A": {"A1", "A2"},
			"B": {"B1", "B2"},
			"C": {"C1", "C2"},
			"D": {"D1", "D2"},
		},
	))
}

// MapByName resolves a built-in map by name.
func MapByName(name string) (*MapDef, error) {
	switch name {
	case "triangle3":
		return TriangleMap(), nil
	case "sample4":
		return SampleMap(), nil
	default:
		return nil, fmt.Errorf("unknown map %q", name)
	}
}

func mustMap(m *MapDef, err error) *MapDef {
	if err != nil {
		panic(err)
	}
	return m
}
