package dbx

import (
	"context"
	"errors"

	"go.etcd.io/bbolt"
)

type contextKey struct{ name string }

var bboltTxKey = contextKey{name: "bboltTxKey"}

// InBBoltTransactionScopeWithResult runs transactionScope inside the
// transaction carried by ctx, or inside a new one that is committed (or
// rolled back on error) when the scope returns. A read-only scope never
// upgrades an enclosing transaction and never commits.
func InBBoltTransactionScopeWithResult[T any](ctx context.Context, db *bbolt.DB, writable bool, transactionScope func(ctx context.Context, tx *bbolt.Tx) (T, error)) (result T, err error) {
	tx, transactionCloser, err := useOrStartBBoltTransaction(ctx, db, writable)
	if err != nil {
		return result, err
	}

	defer func() {
		err = transactionCloser(err)
	}()

	return transactionScope(context.WithValue(ctx, bboltTxKey, tx), tx)
}

func useOrStartBBoltTransaction(ctx context.Context, db *bbolt.DB, writable bool) (*bbolt.Tx, func(err error) error, error) {
	if tx, ok := ctx.Value(bboltTxKey).(*bbolt.Tx); ok {
		if writable && !tx.Writable() {
			return nil, nil, errors.New("cannot start a write scope inside a read-only transaction")
		}
		return tx, func(err error) error { return err }, nil
	}

	tx, err := db.Begin(writable)
	if err != nil {
		return nil, nil, err
	}

	transactionCloser := func(err error) error {
		if err != nil || !writable {
			if txErr := tx.Rollback(); txErr != nil {
				err = errors.Join(err, txErr)
			}
			return err
		}
		return tx.Commit()
	}
	return tx, transactionCloser, nil
}
