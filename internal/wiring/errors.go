package wiring

import "errors"

var (
	// ErrInvalidDimension is returned for non-positive widths or heights and empty layouts.
	ErrInvalidDimension = errors.New("wiring: invalid dimension")

	// ErrInvalidSpec is returned for unknown modes or corners.
	ErrInvalidSpec = errors.New("wiring: invalid spec")

	// ErrDuplicateCoordinate is returned when a ring layout lists a pixel twice.
	ErrDuplicateCoordinate = errors.New("wiring: duplicate coordinate")

	// ErrLengthMismatch is returned when a table does not cover the expected pixel count.
	ErrLengthMismatch = errors.New("wiring: table length mismatch")

	// ErrNonBijectiveMapping is returned when a table is not a permutation.
	ErrNonBijectiveMapping = errors.New("wiring: mapping is not a bijection")
)
