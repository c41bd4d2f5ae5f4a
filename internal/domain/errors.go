package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoAddresses        = errors.New("no valid addresses provided")
	ErrTooManyAddresses   = errors.New("too many addresses")
	ErrAllGeocodingFailed = errors.New("no addresses could be geocoded")
)

// A fatal problem with the caller's input. The run produces no route.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

func NewInputError(err error, format string, args ...any) *InputError {
	return &InputError{Reason: fmt.Sprintf(format, args...), Err: err}
}

func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
