package rnn

import (
	"fmt"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
)

// State is the recurrent state carried from one time step to the next.
//
// C is the memory cell of an LSTM and nil for cells without one.
type State[B tensor.Backend] struct {
	H *tensor.Tensor[float32, B] // [batch, hidden]
	C *tensor.Tensor[float32, B] // [batch, hidden] or nil
}

// Cell consumes one time step of input plus the carried state and
// produces the updated state.
//
// B must implement Tanh and Sigmoid. The bare CPU backend does not, so
// wrap it: autodiff.New(cpu.New()).
type Cell[B tensor.Backend] interface {
	// ZeroState returns the initial state for a batch.
	ZeroState(batchSize int) State[B]

	// Step advances the state by one time step. x has shape [batch, input].
	Step(x *tensor.Tensor[float32, B], state State[B]) State[B]

	// Parameters returns the trainable parameters of the cell.
	Parameters() []*nn.Parameter[B]

	// HiddenSize returns the width of State.H.
	HiddenSize() int
}

// NewCell creates the cell selected by category.
func NewCell[B tensor.Backend](category Category, nInput, nHidden int, backend B) (Cell[B], error) {
	switch category {
	case BasicRNN:
		return NewBasicCell(nInput, nHidden, backend), nil
	case LSTM:
		return NewLSTMCell(nInput, nHidden, backend), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

// projection computes x·Wx + h·Wh + b for one gate.
//
// Keeping the input and recurrent weights apart is equivalent to a single
// weight over the concatenation [x, h].
type projection[B tensor.Backend] struct {
	wx     *nn.Parameter[B] // [input, hidden]
	wh     *nn.Parameter[B] // [hidden, hidden]
	b      *nn.Parameter[B] // [hidden]
	hidden int
}

func newProjection[B tensor.Backend](name string, nInput, nHidden int, biasInit float32, backend B) *projection[B] {
	wx := nn.Xavier(nInput, nHidden, tensor.Shape{nInput, nHidden}, backend)
	wh := nn.Xavier(nHidden, nHidden, tensor.Shape{nHidden, nHidden}, backend)

	var b *tensor.Tensor[float32, B]
	if biasInit == 0 {
		b = nn.Zeros(tensor.Shape{nHidden}, backend)
	} else {
		b = tensor.Full[float32](tensor.Shape{nHidden}, biasInit, backend)
	}

	return &projection[B]{
		wx:     nn.NewParameter(name+".wx", wx),
		wh:     nn.NewParameter(name+".wh", wh),
		b:      nn.NewParameter(name+".b", b),
		hidden: nHidden,
	}
}

func (p *projection[B]) apply(x, h *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := x.MatMul(p.wx.Tensor()).Add(h.MatMul(p.wh.Tensor()))
	return out.Add(p.b.Tensor().Reshape(1, p.hidden))
}

func (p *projection[B]) parameters() []*nn.Parameter[B] {
	return []*nn.Parameter[B]{p.wx, p.wh, p.b}
}

// BasicCell is the plain recurrent cell: h' = tanh(x·Wx + h·Wh + b).
type BasicCell[B tensor.Backend] struct {
	proj    *projection[B]
	tanh    *nn.Tanh[B]
	hidden  int
	backend B
}

// NewBasicCell creates a basic recurrent cell with Xavier-initialized
// weights and zero bias.
func NewBasicCell[B tensor.Backend](nInput, nHidden int, backend B) *BasicCell[B] {
	return &BasicCell[B]{
		proj:    newProjection("cell", nInput, nHidden, 0, backend),
		tanh:    nn.NewTanh[B](),
		hidden:  nHidden,
		backend: backend,
	}
}

// ZeroState returns a zero hidden state.
func (c *BasicCell[B]) ZeroState(batchSize int) State[B] {
	return State[B]{H: tensor.Zeros[float32](tensor.Shape{batchSize, c.hidden}, c.backend)}
}

// Step computes the next hidden state.
func (c *BasicCell[B]) Step(x *tensor.Tensor[float32, B], state State[B]) State[B] {
	return State[B]{H: c.tanh.Forward(c.proj.apply(x, state.H))}
}

// Parameters returns [wx, wh, b].
func (c *BasicCell[B]) Parameters() []*nn.Parameter[B] {
	return c.proj.parameters()
}

// HiddenSize returns the hidden width.
func (c *BasicCell[B]) HiddenSize() int {
	return c.hidden
}

// LSTMCell is a long short-term memory cell.
//
//	i = σ(x·Wxi + h·Whi + bi)    input gate
//	j = tanh(x·Wxj + h·Whj + bj) candidate
//	f = σ(x·Wxf + h·Whf + bf)    forget gate, bf starts at 1.0
//	o = σ(x·Wxo + h·Who + bo)    output gate
//	c' = c*f + i*j
//	h' = tanh(c') * o
type LSTMCell[B tensor.Backend] struct {
	input     *projection[B]
	candidate *projection[B]
	forget    *projection[B]
	output    *projection[B]
	sigmoid   *nn.Sigmoid[B]
	tanh      *nn.Tanh[B]
	hidden    int
	backend   B
}

// ForgetBias is the initial forget gate bias of an LSTMCell.
const ForgetBias = 1.0

// NewLSTMCell creates an LSTM cell with Xavier-initialized weights.
func NewLSTMCell[B tensor.Backend](nInput, nHidden int, backend B) *LSTMCell[B] {
	return &LSTMCell[B]{
		input:     newProjection("lstm.input", nInput, nHidden, 0, backend),
		candidate: newProjection("lstm.candidate", nInput, nHidden, 0, backend),
		forget:    newProjection("lstm.forget", nInput, nHidden, ForgetBias, backend),
		output:    newProjection("lstm.output", nInput, nHidden, 0, backend),
		sigmoid:   nn.NewSigmoid[B](),
		tanh:      nn.NewTanh[B](),
		hidden:    nHidden,
		backend:   backend,
	}
}

// ZeroState returns zero hidden and memory states.
func (c *LSTMCell[B]) ZeroState(batchSize int) State[B] {
	shape := tensor.Shape{batchSize, c.hidden}
	return State[B]{
		H: tensor.Zeros[float32](shape, c.backend),
		C: tensor.Zeros[float32](shape, c.backend),
	}
}

// Step computes the next hidden and memory states.
func (c *LSTMCell[B]) Step(x *tensor.Tensor[float32, B], state State[B]) State[B] {
	i := c.sigmoid.Forward(c.input.apply(x, state.H))
	j := c.tanh.Forward(c.candidate.apply(x, state.H))
	f := c.sigmoid.Forward(c.forget.apply(x, state.H))
	o := c.sigmoid.Forward(c.output.apply(x, state.H))

	mem := state.C.Mul(f).Add(i.Mul(j))
	return State[B]{
		H: c.tanh.Forward(mem).Mul(o),
		C: mem,
	}
}

// Parameters returns the weights of the four gates.
func (c *LSTMCell[B]) Parameters() []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], 0, 12)
	for _, p := range []*projection[B]{c.input, c.candidate, c.forget, c.output} {
		params = append(params, p.parameters()...)
	}
	return params
}

// HiddenSize returns the hidden width.
func (c *LSTMCell[B]) HiddenSize() int {
	return c.hidden
}
