package entity

import crerr "github.com/cockroachdb/errors"

var (
	ErrUnknownKind      = crerr.New("unknown entity kind")
	ErrUnknownField     = crerr.New("unknown entity field")
	ErrMissingKey       = crerr.New("natural key field is missing")
	ErrInvalidReference = crerr.New("invalid reference value")
	// ErrAmbiguousLookup means a natural key matched more than one row.
	ErrAmbiguousLookup = crerr.New("lookup matched more than one row")
	ErrRecordNotFound  = crerr.New("record not found")
	// ErrConflict means a concurrent writer inserted the same natural key.
	ErrConflict = crerr.New("natural key conflict")
)
