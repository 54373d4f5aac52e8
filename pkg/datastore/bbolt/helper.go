package bbolt

import (
	"context"

	"go.etcd.io/bbolt"

	"github.com/netdash/netdash/pkg/dbx"
)

// dbTx runs callback against bucketName. Read-only scopes see a nil bucket
// when it has never been written.
func dbTx[T any](ctx context.Context, db *bbolt.DB, bucketName string, writable bool, callback func(*bbolt.Tx, *bbolt.Bucket) (T, error)) (T, error) {
	return dbx.InBBoltTransactionScopeWithResult(ctx, db, writable, func(ctx context.Context, tx *bbolt.Tx) (result T, err error) {
		var bucket *bbolt.Bucket
		if writable {
			bucket, err = tx.CreateBucketIfNotExists([]byte(bucketName))
			if err != nil {
				return result, err
			}
		} else {
			bucket = tx.Bucket([]byte(bucketName))
			if bucket == nil {
				return result, nil
			}
		}
		return callback(tx, bucket)
	})
}
