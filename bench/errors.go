package bench

import "errors"

var (
	// ErrDatabaseRequired is returned when a database is not provided.
	ErrDatabaseRequired = errors.New("database required")

	// ErrFamilyRequired is returned when no column family name is given.
	ErrFamilyRequired = errors.New("column family required")

	// ErrReservedFamily is returned when the target family is used for
	// bookkeeping.
	ErrReservedFamily = errors.New("column family is reserved")

	// ErrInvalidCount is returned when the entry count is negative.
	ErrInvalidCount = errors.New("entry count must not be negative")
)
