package agent

import (
	"fmt"
	"sync"

	gonnx "github.com/advancedclimatesystems/gonnx"
	"gorgonia.org/tensor"

	"github.com/mgriffin/nodewar/pkg/engine"
)

// Number of per-node input features fed to the value network.
const valueFeatures = 6

// ValueModel wraps an ONNX value network that scores a board state from
// one power's perspective. The model takes a (1, nodes, features) board
// tensor named "board" and returns a single scalar named "value".
type ValueModel struct {
	model *gonnx.Model
	mu    sync.Mutex
}

// LoadValueModel loads the ONNX model at path.
func LoadValueModel(path string) (*ValueModel, error) {
	model, err := gonnx.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load value model %s: %w", path, err)
	}
	return &ValueModel{model: model}, nil
}

// Evaluate runs the network on the state as seen by power.
func (vm *ValueModel) Evaluate(gs *engine.GameState, m *engine.MapDef, power engine.Power) (float64, error) {
	board := encodeBoard(gs, m, power)

	boardTensor := tensor.New(
		tensor.WithShape(1, len(m.Nodes), valueFeatures),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(board),
	)

	vm.mu.Lock()
	outputs, err := vm.model.Run(gonnx.Tensors{"board": boardTensor})
	vm.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("value model run: %w", err)
	}

	out, ok := outputs["value"]
	if !ok {
		return 0, fmt.Errorf("value model output %q not found", "value")
	}
	switch data := out.Data().(type) {
	case []float32:
		if len(data) == 0 {
			return 0, fmt.Errorf("value model returned no data")
		}
		return float64(data[0]), nil
	case []float64:
		if len(data) == 0 {
			return 0, fmt.Errorf("value model returned no data")
		}
		return data[0], nil
	case float32:
		return float64(data), nil
	case float64:
		return data, nil
	default:
		return 0, fmt.Errorf("value model returned unexpected type %T", data)
	}
}

// encodeBoard builds the per-node feature planes, relative to the power
// being evaluated: own unit, enemy unit, own center, enemy center,
// unowned center, and normalized connectivity. Node order follows the
// map definition so the encoding is stable across calls.
func encodeBoard(gs *engine.GameState, m *engine.MapDef, power engine.Power) []float32 {
	occupancy := gs.Occupancy()

	maxDegree := 1
	for _, node := range m.Nodes {
		if d := len(m.Neighbors(node)); d > maxDegree {
			maxDegree = d
		}
	}

	board := make([]float32, len(m.Nodes)*valueFeatures)
	for i, node := range m.Nodes {
		f := board[i*valueFeatures : (i+1)*valueFeatures]
		if occupant, ok := occupancy[node]; ok {
			if occupant == power {
				f[0] = 1
			} else {
				f[1] = 1
			}
		}
		if m.IsSupplyCenter(node) {
			switch owner := gs.CenterOwner[node]; {
			case owner == power:
				f[2] = 1
			case owner != engine.Neutral:
				f[3] = 1
			default:
				f[4] = 1
			}
		}
		f[5] = float32(len(m.Neighbors(node))) / float32(maxDegree)
	}
	return board
}
