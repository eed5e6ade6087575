package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("seller not found")
	ErrInvalidDeal = errors.New("invalid deal record")
)
