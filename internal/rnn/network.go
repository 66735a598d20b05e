package rnn

import (
	"fmt"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
)

// Network is a one-layer recurrent classifier: the cell is unrolled over
// NSteps inputs and a linear head maps the last hidden state to class
// scores.
//
// Architecture:
//
//	Input: [batch, NSteps, NInput] (or [batch, NSteps*NInput])
//	Cell:  NSteps applications of a BasicCell or LSTMCell
//	Head:  h_last · W + b, W [NHidden, NClasses], b [NClasses]
//	Out:   softmax(head) for Logistic, head for Linear
//
// Network implements Born's module contract (Forward, Parameters,
// StateDict, LoadStateDict) so it can be saved with nn.Save.
type Network[B tensor.Backend] struct {
	cfg     Config
	cell    Cell[B]
	weight  *nn.Parameter[B] // [NHidden, NClasses]
	bias    *nn.Parameter[B] // [NClasses]
	backend B
}

// NewNetwork builds the network described by cfg.
//
// Head weights and bias are drawn from N(0, 1).
func NewNetwork[B tensor.Backend](cfg Config, backend B) (*Network[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cell, err := NewCell(cfg.Category, cfg.NInput, cfg.NHidden, backend)
	if err != nil {
		return nil, err
	}
	return &Network[B]{
		cfg:     cfg,
		cell:    cell,
		weight:  nn.NewParameter("head.weight", nn.Randn(tensor.Shape{cfg.NHidden, cfg.NClasses}, backend)),
		bias:    nn.NewParameter("head.bias", nn.Randn(tensor.Shape{cfg.NClasses}, backend)),
		backend: backend,
	}, nil
}

// Forward computes class scores for a batch of sequences.
//
// Input must have shape [batch, NSteps, NInput] or [batch, NSteps*NInput].
// Panics on any other shape, like Born's layers.
//
// The cells need Tanh and Sigmoid from B, so inference after nn.Load
// also runs on an autodiff backend such as autodiff.New(cpu.New()).
func (n *Network[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	steps, err := n.split(input)
	if err != nil {
		panic(fmt.Sprintf("rnn.Network.Forward: %v", err))
	}
	return n.Unroll(steps)
}

// Unroll runs the cell over steps, each of shape [batch, NInput], and
// applies the head to the final hidden state.
func (n *Network[B]) Unroll(steps []*tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(steps) != n.cfg.NSteps {
		panic(fmt.Sprintf("rnn.Network.Unroll: expected %d steps, got %d", n.cfg.NSteps, len(steps)))
	}
	state := n.cell.ZeroState(steps[0].Shape()[0])
	for _, x := range steps {
		state = n.cell.Step(x, state)
	}

	scores := state.H.MatMul(n.weight.Tensor()).Add(n.bias.Tensor().Reshape(1, n.cfg.NClasses))
	if n.cfg.Regression == Logistic {
		scores = scores.Softmax(1)
	}
	return scores
}

// split slices a batch into NSteps tensors of shape [batch, NInput].
//
// Inputs are leaves of the graph, so the slices are plain copies.
func (n *Network[B]) split(input *tensor.Tensor[float32, B]) ([]*tensor.Tensor[float32, B], error) {
	shape := input.Shape()
	var batch int
	switch {
	case len(shape) == 3 && shape[1] == n.cfg.NSteps && shape[2] == n.cfg.NInput:
		batch = shape[0]
	case len(shape) == 2 && shape[1] == n.cfg.SequenceSize():
		batch = shape[0]
	default:
		return nil, fmt.Errorf("%w: expected [batch, %d, %d], got %v",
			ErrShapeMismatch, n.cfg.NSteps, n.cfg.NInput, shape)
	}
	if batch == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrShapeMismatch)
	}

	data := input.Raw().AsFloat32()
	seq := n.cfg.SequenceSize()
	width := n.cfg.NInput
	steps := make([]*tensor.Tensor[float32, B], n.cfg.NSteps)
	for t := range steps {
		buf := make([]float32, batch*width)
		for b := 0; b < batch; b++ {
			copy(buf[b*width:(b+1)*width], data[b*seq+t*width:b*seq+(t+1)*width])
		}
		step, err := tensor.FromSlice(buf, tensor.Shape{batch, width}, n.backend)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", t, err)
		}
		steps[t] = step
	}
	return steps, nil
}

// Config returns the configuration the network was built from.
func (n *Network[B]) Config() Config {
	return n.cfg
}

// Cell returns the recurrent cell.
func (n *Network[B]) Cell() Cell[B] {
	return n.cell
}

// Parameters returns the cell parameters followed by the head weight and
// bias.
func (n *Network[B]) Parameters() []*nn.Parameter[B] {
	params := append([]*nn.Parameter[B]{}, n.cell.Parameters()...)
	return append(params, n.weight, n.bias)
}

// NumParameters counts trainable scalars.
func (n *Network[B]) NumParameters() int {
	total := 0
	for _, p := range n.Parameters() {
		total += p.Tensor().Shape().NumElements()
	}
	return total
}

// StateDict returns a map of parameter names to raw tensors.
func (n *Network[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for _, p := range n.Parameters() {
		stateDict[p.Name()] = p.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict copies parameters from a state dictionary.
func (n *Network[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, p := range n.Parameters() {
		raw, ok := stateDict[p.Name()]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.Name())
		}
		want := p.Tensor().Shape()
		if !raw.Shape().Equal(want) {
			return fmt.Errorf("%w: %s: expected %v, got %v", ErrShapeMismatch, p.Name(), want, raw.Shape())
		}
		if raw.DType() != tensor.Float32 {
			return fmt.Errorf("%s dtype mismatch: expected float32, got %v", p.Name(), raw.DType())
		}
		copy(p.Tensor().Raw().AsFloat32(), raw.AsFloat32())
	}
	return nil
}
