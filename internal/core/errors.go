package core

import "fmt"

// ValidationError marks malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError marks a missing entity (location, product, transfer).
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// StateError marks an operation applied to an entity in the wrong status.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

// InsufficientStockError marks a stock mutation that would drive a
// quantity negative.
type InsufficientStockError struct {
	Msg string
}

func (e *InsufficientStockError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFoundError from a format string.
func NotFoundf(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// Statef builds a StateError from a format string.
func Statef(format string, args ...any) error {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockf builds an InsufficientStockError from a format string.
func InsufficientStockf(format string, args ...any) error {
	return &InsufficientStockError{Msg: fmt.Sprintf(format, args...)}
}
