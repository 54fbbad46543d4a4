package workorder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an id refers to no work order.
var ErrNotFound = errors.New("work order not found")

// ValidationError reports which required fields were empty after trimming.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
