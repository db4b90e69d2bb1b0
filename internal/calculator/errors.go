package calculator

import "errors"

var (
	// ErrInvalidCoordinate is returned when a latitude or longitude is not a
	// finite number inside its range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidInput is returned for an empty or malformed location list.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when no location with usable coordinates exists.
	ErrNotFound = errors.New("no location found")
	// ErrNoOrigin is returned when a distance from the current location is
	// requested but no origin is known.
	ErrNoOrigin = errors.New("no origin coordinate")
)
