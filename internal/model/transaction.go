package model

import "context"

// Transactor runs fn as one atomic unit. Stores called with the context
// passed to fn take part in the same transaction; any error returned by fn
// rolls every write back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
