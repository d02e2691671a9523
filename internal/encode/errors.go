package encode

import (
	"errors"
	"fmt"
)

// ErrEncoding is the sentinel wrapped by every EncodingError.
var ErrEncoding = errors.New("feature encoding failed")

// EncodingError reports a value that cannot be placed on a numeric scale.
type EncodingError struct {
	Value string
	Index int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("feature value %q at position %d is not numeric", e.Value, e.Index)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}
