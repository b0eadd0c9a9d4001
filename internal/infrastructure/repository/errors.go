package repository

import "errors"

var (
	errInsufficientStock = errors.New("insufficient stock")

	// ErrTillShort is returned by Deduct when a slot no longer holds enough notes
	ErrTillShort = errors.New("till does not hold enough of a denomination")
)
