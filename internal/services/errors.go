package services

import "errors"

var (
	ErrZeroDelta        = errors.New("ledger delta must be nonzero")
	ErrInvalidReason    = errors.New("unknown ledger reason")
	ErrChildNotFound    = errors.New("child not found")
	ErrInvalidThreshold = errors.New("goal threshold must be a positive integer")
)
