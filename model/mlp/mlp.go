// Package mlp implements a multi-layered perceptron value function
// using gorgonia for automatic differentiation
package mlp

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/govalue/model"
)

// fcLayer is a fully connected layer of the network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     func(x *G.Node) (*G.Node, error)
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, err
	}

	// Broadcast the bias weights along the batch dimension
	x, err = G.BroadcastAdd(x, f.bias, nil, []byte{0})
	if err != nil {
		return nil, err
	}

	if f.act == nil {
		return x, nil
	}
	return f.act(x)
}

// MLP implements model.ValueFunction with a feed-forward neural
// network with a single scalar output head. Hidden layers use ReLU
// activations; the output layer is linear.
type MLP struct {
	g          *G.ExprGraph
	input      *G.Node
	prediction *G.Node
	learnables G.Nodes
	vm         G.VM
	features   int
}

// New returns an MLP value function over features input features with
// hidden layer widths hiddenSizes. Hidden weights are initialized with
// init; biases start at zero. An empty hiddenSizes gives a linear
// model with a bias unit.
func New(features int, hiddenSizes []int, init G.InitWFn) (*MLP, error) {
	g := G.NewGraph()

	input := G.NewMatrix(g, tensor.Float64, G.WithShape(1, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	// A final linear layer is always added so that the network
	// predicts a single scalar head
	sizes := append(append([]int{}, hiddenSizes...), 1)

	var layers []*fcLayer
	var learnables G.Nodes
	in := features
	for i, out := range sizes {
		weights := G.NewMatrix(g, tensor.Float64, G.WithShape(in, out),
			G.WithName(fmt.Sprintf("L%dW", i)), G.WithInit(init))
		bias := G.NewMatrix(g, tensor.Float64, G.WithShape(1, out),
			G.WithName(fmt.Sprintf("L%dB", i)), G.WithInit(G.Zeroes()))

		layer := &fcLayer{weights: weights, bias: bias}
		if i < len(sizes)-1 {
			layer.act = G.Rectify
		}

		layers = append(layers, layer)
		learnables = append(learnables, weights, bias)
		in = out
	}

	// Forward pass
	pred := input
	var err error
	for _, layer := range layers {
		if pred, err = layer.fwd(pred); err != nil {
			return nil, errors.Wrap(err, "new: could not compute forward "+
				"pass")
		}
	}

	// The prediction has shape (1, 1); reduce to a scalar so its
	// gradient can be taken with respect to the learnables
	out, err := G.Sum(pred)
	if err != nil {
		return nil, errors.Wrap(err, "new: could not reduce prediction")
	}
	if _, err := G.Grad(out, learnables...); err != nil {
		return nil, errors.Wrap(err, "new: could not construct gradient")
	}

	vm := G.NewTapeMachine(g, G.BindDualValues(learnables...))

	return &MLP{
		g:          g,
		input:      input,
		prediction: out,
		learnables: learnables,
		vm:         vm,
		features:   features,
	}, nil
}

// Features returns the number of input features of the network
func (m *MLP) Features() int {
	return m.features
}

// Close releases the virtual machine backing the network
func (m *MLP) Close() error {
	return m.vm.Close()
}

// run evaluates the network at obs, leaving the prediction and
// gradients bound to the graph's nodes
func (m *MLP) run(obs mat.Vector) (float64, error) {
	if obs.Len() != m.features {
		return 0, fmt.Errorf("run: observation has %d features, want %d",
			obs.Len(), m.features)
	}

	backing := make([]float64, m.features)
	for i := range backing {
		backing[i] = obs.AtVec(i)
	}
	in := tensor.New(tensor.WithShape(1, m.features),
		tensor.WithBacking(backing))
	if err := G.Let(m.input, in); err != nil {
		return 0, errors.Wrap(err, "run: could not set input")
	}

	m.vm.Reset()
	if err := m.vm.RunAll(); err != nil {
		return 0, errors.Wrap(err, "run: could not run tape machine")
	}

	return m.prediction.Value().Data().(float64), nil
}

// Value implements model.ValueFunction
func (m *MLP) Value(obs mat.Vector) (float64, error) {
	return m.run(obs)
}

// Gradient implements model.ValueFunction
func (m *MLP) Gradient(obs mat.Vector) (float64, model.Gradients, error) {
	v, err := m.run(obs)
	if err != nil {
		return 0, nil, err
	}

	grads := make(model.Gradients, len(m.learnables))
	for i, node := range m.learnables {
		grad, err := node.Grad()
		if err != nil {
			return 0, nil, errors.Wrapf(err, "gradient: no gradient for %v",
				node.Name())
		}
		data := grad.Data().([]float64)
		grads[i] = append([]float64{}, data...)
	}
	return v, grads, nil
}

// AddScaled implements model.ValueFunction. Parameters are mutated in
// place; nothing else in the graph changes until the next run.
func (m *MLP) AddScaled(scale float64, grads model.Gradients) error {
	if len(grads) != len(m.learnables) {
		return fmt.Errorf("addscaled: have %d gradients, want %d",
			len(grads), len(m.learnables))
	}

	for i, node := range m.learnables {
		params := node.Value().Data().([]float64)
		if len(grads[i]) != len(params) {
			return fmt.Errorf("addscaled: gradient %d has %d elements, "+
				"want %d", i, len(grads[i]), len(params))
		}
		for j := range params {
			params[j] += scale * grads[i][j]
		}
	}
	return nil
}
