package stores

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type contextKey string

const txKey contextKey = "tx"

// BaseStore carries the shared transaction plumbing. A transaction opened
// with WithTransaction rides the context, so every store method that runs
// inside the callback joins the same transaction.
type BaseStore struct {
	db *gorm.DB
}

func (s *BaseStore) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func forUpdate() clause.Expression {
	return clause.Locking{Strength: "UPDATE"}
}

func (s *BaseStore) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	})
}
