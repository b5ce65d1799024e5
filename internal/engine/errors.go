package engine

import "errors"

var (
	// ErrValidation marks malformed or out-of-domain portfolio parameters.
	ErrValidation = errors.New("invalid portfolio parameters")
	// ErrInsufficientData marks a window without usable price observations.
	ErrInsufficientData = errors.New("insufficient price data")
	// ErrDataIntegrity marks corrupted inputs: duplicate or unordered dates, bad prices.
	ErrDataIntegrity = errors.New("price data integrity violation")
)
