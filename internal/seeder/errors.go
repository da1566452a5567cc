package seeder

import "errors"

var (
	ErrUndersupply     = errors.New("not enough distinct values to sample")
	ErrUniqueExhausted = errors.New("unique values exhausted")
	ErrEmptyParent     = errors.New("referenced table has no rows")
	ErrCycle           = errors.New("circular dependency detected")
	ErrUnknownEntity   = errors.New("unknown entity")
)
