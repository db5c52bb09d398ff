package entity

import "context"

// Query selects rows of one kind. Filter values are matched exactly.
type Query struct {
	Filter  Values
	OrderBy []Field
	Limit   int
}

type Reader interface {
	List(ctx context.Context, kind Kind, query Query) ([]Record, error)
	Count(ctx context.Context, kind Kind) (int, error)
}

// Store persists entities of every registered kind. Reference fields are
// stored and returned as row ids (int64).
type Store interface {
	Reader
	// WithinTx runs fn in one transaction. A non-nil error from fn rolls
	// back every write made through tx.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the write surface available inside Store.WithinTx.
type Tx interface {
	// Find returns the row matching key. More than one match is ErrAmbiguousLookup.
	Find(ctx context.Context, kind Kind, key Values) (Record, bool, error)
	// GetOrCreate returns the row matching key, inserting key+defaults when absent.
	GetOrCreate(ctx context.Context, kind Kind, key, defaults Values) (Record, bool, error)
	// UpdateOrCreate overwrites defaults on the row matching key, inserting when absent.
	UpdateOrCreate(ctx context.Context, kind Kind, key, defaults Values) (Record, bool, error)
	Update(ctx context.Context, kind Kind, id int64, values Values) (Record, error)
}
