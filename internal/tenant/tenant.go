// Package tenant carries the authenticated store id through a context and turns it into a
// query scope. Repositories of store-owned tables never filter by store id by hand.
package tenant

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ctxKey struct{}

var ErrNoTenant = errors.New("tenant: no store in context")

// WithStore returns a child context bound to storeID.
func WithStore(ctx context.Context, storeID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, storeID)
}

// StoreID returns the store bound by WithStore.
func StoreID(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	if !ok || id <= 0 {
		return 0, ErrNoTenant
	}
	return id, nil
}

// Scope restricts a query on table to the store in ctx. Without one the statement fails with
// ErrNoTenant instead of running unscoped.
func Scope(ctx context.Context, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		id, err := StoreID(ctx)
		if err != nil {
			_ = db.AddError(err)
			return db
		}
		return db.Where(clause.Eq{Column: clause.Column{Table: table, Name: "store_id"}, Value: id})
	}
}
