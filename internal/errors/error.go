// Package errors provides custom error types for sweet inventory operations.
package errors

import "errors"

var (
	// ErrSweetNotFound reports that no sweet exists with the requested ID.
	ErrSweetNotFound = errors.New("sweet not found")
	// ErrDuplicateID reports an insert whose ID is already taken.
	ErrDuplicateID = errors.New("sweet with this ID already exists")
	// ErrInsufficientStock reports a purchase exceeding the available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity reports a non-positive purchase or restock quantity.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrInvalidSortField reports an unrecognized sort field.
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrInvalidAmount reports a quantity or weight value that is neither a
	// number nor a known named preset.
	ErrInvalidAmount = errors.New("invalid amount value")
	// ErrInvalidUnit reports a missing or unrecognized quantity unit.
	ErrInvalidUnit = errors.New("invalid or missing quantity unit")
	// ErrValidation marks an entity rule violation; the wrapped message names
	// the first field that failed.
	ErrValidation = errors.New("invalid sweet")
)
