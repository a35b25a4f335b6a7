package arena

import (
	"strings"

	"github.com/mgriffin/nodewar/pkg/engine"
)

// ParseAgentConfig parses an agent configuration string like
// "A=montecarlo,*=random" against the powers on a map. Powers not named
// get the "*" default, or "heuristic" when no default is given.
func ParseAgentConfig(s string, m *engine.MapDef) map[engine.Power]string {
	cfg := make(map[engine.Power]string)
	def := "heuristic"

	for _, part := range strings.Split(s, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || val == "" {
			continue
		}
		if key == "*" {
			def = val
		} else {
			cfg[engine.Power(key)] = val
		}
	}

	for _, p := range m.Powers() {
		if _, ok := cfg[p]; !ok {
			cfg[p] = def
		}
	}
	return cfg
}
