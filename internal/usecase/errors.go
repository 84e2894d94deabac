package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("resource already exists")
	ErrConsistency           = errors.New("store consistency failure")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInsufficientFunds is a validation failure, so it matches both itself
	// and ErrInvalidInput under errors.Is.
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrInvalidInput)
)
