package ingest

import "errors"

var (
	// ErrInvalidPeriod is returned for a year outside 2000..2100 or a
	// month outside 1..12.
	ErrInvalidPeriod = errors.New("ingest: invalid period")
	// ErrEmptyDeviceID is returned when a store call lacks a device id.
	ErrEmptyDeviceID = errors.New("ingest: empty device id")
	// ErrNilValues is returned when a merge is attempted without values.
	ErrNilValues = errors.New("ingest: nil values")
)
