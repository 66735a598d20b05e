package dataset

import "errors"

// Common errors.
var (
	ErrInvalidMagic     = errors.New("invalid IDX magic number")
	ErrCountMismatch    = errors.New("image and label counts differ")
	ErrChecksumMismatch = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidSplit     = errors.New("invalid split")
)
