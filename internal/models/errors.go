package models

import "errors"

// Custom errors
var (
	// ErrInsufficientData indicates that a prediction was requested with
	// fewer matches or baselines than the model minimum. It is raised, never
	// swallowed: the engine does not fabricate predictions from thin data.
	ErrInsufficientData = errors.New("insufficient data for prediction")

	// ErrMalformedPick indicates a pick that cannot be interpreted against a
	// finished match. Resolution maps it to an UNKNOWN result instead of
	// propagating it out of batch loops.
	ErrMalformedPick = errors.New("malformed pick")

	ErrNotFound      = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key violation")
	ErrInvalidID     = errors.New("invalid ID format")
	ErrUnknownMarket = errors.New("unknown market")
)
