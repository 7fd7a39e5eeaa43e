package database

import "context"

// TxManager runs fn inside a transaction. Repositories called with txCtx
// join that transaction; fn returning an error rolls it back.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}
