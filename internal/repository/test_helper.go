package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Entities lists every table the application owns, in dependency order.
func Entities() []any {
	return []any{&StoreEntity{}, &CustomerEntity{}, &InvoiceEntity{}, &InvoiceItemEntity{}, &TransactionEntity{}}
}

// OpenSQLite opens a private in-memory database with the application schema. It is shared by
// the repository, service and end-to-end tests.
func OpenSQLite(t testing.TB) *pg.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), pg.GormConfig())
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Entities()...))

	conn := pg.New(db, db)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SeedStore inserts a store and returns a context bound to it.
func SeedStore(t testing.TB, db *pg.DB, phone string) (context.Context, *model.Store) {
	t.Helper()
	s, err := NewStoreRepository(db).Create(context.Background(), &model.Store{
		Name:         "Store " + phone,
		Phone:        phone,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return tenant.WithStore(context.Background(), s.ID), s
}

var seedPhones atomic.Int64

// SeedCustomer inserts a customer into the store bound to ctx.
func SeedCustomer(t testing.TB, ctx context.Context, db *pg.DB, name string) *model.Customer {
	t.Helper()
	c, err := NewCustomerRepository(db).Create(ctx, &model.Customer{
		Name:  name,
		Phone: fmt.Sprintf("9%09d", seedPhones.Add(1)),
	})
	require.NoError(t, err)
	return c
}
