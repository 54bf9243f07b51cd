package repo

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStars = errors.New("insufficient star balance")
	ErrStatusConflict    = errors.New("order status changed concurrently")
)
