package sources

import "errors"

// Error kinds reported by the adapters. Adapters wrap them with context, so
// use errors.Is to test for a kind.
var (
	// ErrNotFound means the requested device or interface does not exist.
	ErrNotFound = errors.New("not found")
	// ErrParse means the source produced data that could not be understood.
	ErrParse = errors.New("parse error")
	// ErrDevice means the device exists but refused the request.
	ErrDevice = errors.New("device error")
	// ErrIO means the source could not be read at all.
	ErrIO = errors.New("io error")
)
