package rnn

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrUnknownCategory   = errors.New("unknown cell category")
	ErrUnknownRegression = errors.New("unknown output activation")
	ErrInvalidConfig     = errors.New("invalid model configuration")
	ErrInvalidOrder      = errors.New("invalid sequence ordering")
	ErrInvalidOptions    = errors.New("invalid training options")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrEmptySplit        = errors.New("dataset split is empty")
)

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
