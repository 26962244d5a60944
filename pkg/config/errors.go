package config

import "errors"

var (
	ErrInvalidBackend  = errors.New("invalid backend")
	ErrInvalidCategory = errors.New("invalid category")
)
