package arena

import (
	"reflect"
	"testing"

	"github.com/mgriffin/nodewar/pkg/engine"
)

func TestParseAgentConfig(t *testing.T) {
	m := engine.TriangleMap()

	tests := []struct {
		name string
		in   string
		want map[engine.Power]string
	}{
		{
			name: "empty string defaults everyone to heuristic",
			in:   "",
			want: map[engine.Power]string{"A": "heuristic", "B": "heuristic", "C": "heuristic"},
		},
		{
			name: "star sets the default",
			in:   "*=random",
			want: map[engine.Power]string{"A": "random", "B": "random", "C": "random"},
		},
		{
			name: "named power overrides the default",
			in:   "A=montecarlo,*=random",
			want: map[engine.Power]string{"A": "montecarlo", "B": "random", "C": "random"},
		},
		{
			name: "spaces around entries are tolerated",
			in:   " A=negotiator , B=random ",
			want: map[engine.Power]string{"A": "negotiator", "B": "random", "C": "heuristic"},
		},
		{
			name: "malformed entries are skipped",
			in:   "A=,garbage,B=random",
			want: map[engine.Power]string{"A": "heuristic", "B": "random", "C": "heuristic"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAgentConfig(tt.in, m)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAgentConfig(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
