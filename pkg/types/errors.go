package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNoColumns is returned when a required column selection is empty
	ErrNoColumns = errors.New("no column selected")

	// ErrUnknownColumn is returned when a selected column is not in the table headers
	ErrUnknownColumn = errors.New("column not present in input data")

	// ErrUnknownStrategy is returned for an unsupported strategy name
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrInvalidK is returned when k is not a positive number
	ErrInvalidK = errors.New("k must be a positive integer")

	// ErrNotEnoughPoints is returned when there are fewer points than clusters
	ErrNotEnoughPoints = errors.New("not enough data points")

	// ErrClassCount is returned when a binary classifier does not see exactly two classes
	ErrClassCount = errors.New("exactly two label classes are required")

	// ErrMismatchedData is returned when filtered x/y arrays differ in length or are empty
	ErrMismatchedData = errors.New("invalid or mismatched data")

	// ErrZeroVariance is returned when a fit needs spread in the feature and there is none
	ErrZeroVariance = errors.New("feature has zero variance")

	// ErrEmptyInput is returned when a node has no input data to work on
	ErrEmptyInput = errors.New("no input data")

	// ErrInvalidQuery is returned when a prediction input cannot be read
	ErrInvalidQuery = errors.New("invalid prediction input")
)

// ConfigError is a blocking, user-visible error: nothing is computed.
type ConfigError struct {
	// Op is the operation that rejected the configuration
	Op string
	// Field is the offending configuration field, if any
	Field string
	// Err is the underlying error
	Err error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error: %s: %s: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(op, field string, err error) error {
	return &ConfigError{
		Op:    op,
		Field: field,
		Err:   err,
	}
}

// IsConfigError reports whether err is, or wraps, a ConfigError
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
