package rnn

// History holds the accuracy samples recorded during training.
//
// Train and Validation always have the same length; entry i was recorded
// at iteration (i+1)*Every of the run that produced it.
type History struct {
	Train      []float32
	Validation []float32
	Every      int
}

// Len returns the number of recorded samples.
func (h History) Len() int {
	return len(h.Train)
}

// Clone returns a deep copy.
func (h History) Clone() History {
	return History{
		Train:      append([]float32(nil), h.Train...),
		Validation: append([]float32(nil), h.Validation...),
		Every:      h.Every,
	}
}

func (h *History) append(train, validation float32) {
	h.Train = append(h.Train, train)
	h.Validation = append(h.Validation, validation)
}
