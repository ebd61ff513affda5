package repository

import "errors"

var (
	// ErrInsufficientStock is returned when a conditional stock decrement
	// matches no row.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStatusChanged is returned when a compare-and-set status update finds
	// the row no longer in the expected status.
	ErrStatusChanged = errors.New("status changed concurrently")
)
