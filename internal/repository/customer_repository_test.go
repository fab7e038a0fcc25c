package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository_CRUD(t *testing.T) {
	db := OpenSQLite(t)
	repo := NewCustomerRepository(db)
	ctx, store := SeedStore(t, db, "1111111")

	created, err := repo.Create(ctx, &model.Customer{Name: "Asha", Phone: "9000000001"})
	require.NoError(t, err)
	assert.Equal(t, store.ID, created.StoreID)
	assert.True(t, created.TotalSpent.IsZero())

	t.Run("duplicate phone within store", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Customer{Name: "Other", Phone: "9000000001"})
		assert.ErrorIs(t, err, model.ErrConflict)
	})

	t.Run("same phone in another store is fine", func(t *testing.T) {
		otherCtx, _ := SeedStore(t, db, "2222222")
		_, err := repo.Create(otherCtx, &model.Customer{Name: "Asha", Phone: "9000000001"})
		assert.NoError(t, err)
	})

	t.Run("update", func(t *testing.T) {
		c := *created
		c.Name = "Asha K"
		updated, err := repo.Update(ctx, &c)
		require.NoError(t, err)
		assert.Equal(t, "Asha K", updated.Name)
	})

	t.Run("set total spent", func(t *testing.T) {
		require.NoError(t, repo.SetTotalSpent(ctx, created.ID, decimal.RequireFromString("123.456")))
		c, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "123.46", c.TotalSpent.StringFixed(2))
	})

	t.Run("missing tenant", func(t *testing.T) {
		_, err := repo.Get(context.Background(), created.ID)
		assert.ErrorIs(t, err, tenant.ErrNoTenant)

		_, err = repo.Create(context.Background(), &model.Customer{Name: "x", Phone: "9000000009"})
		assert.ErrorIs(t, err, tenant.ErrNoTenant)
	})
}

func TestCustomerRepository_List(t *testing.T) {
	db := OpenSQLite(t)
	repo := NewCustomerRepository(db)
	ctx, _ := SeedStore(t, db, "1111111")
	otherCtx, _ := SeedStore(t, db, "2222222")

	for _, c := range []struct{ name, phone string }{
		{"Bala", "9100000001"},
		{"Anand", "9100000002"},
		{"Anita", "8100000003"},
	} {
		_, err := repo.Create(ctx, &model.Customer{Name: c.name, Phone: c.phone})
		require.NoError(t, err)
	}
	_, err := repo.Create(otherCtx, &model.Customer{Name: "Andrew", Phone: "9100000009"})
	require.NoError(t, err)

	t.Run("ordered by name and scoped", func(t *testing.T) {
		list, total, err := repo.List(ctx, model.CustomerFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 3)
		assert.Equal(t, "Anand", list[0].Name)
		assert.Equal(t, "Anita", list[1].Name)
		assert.Equal(t, "Bala", list[2].Name)
	})

	t.Run("search by name prefix ignores case", func(t *testing.T) {
		list, total, err := repo.List(ctx, model.CustomerFilter{Search: "an"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("search by phone prefix", func(t *testing.T) {
		list, _, err := repo.List(ctx, model.CustomerFilter{Search: "81"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Anita", list[0].Name)
	})

	t.Run("pagination", func(t *testing.T) {
		list, total, err := repo.List(ctx, model.CustomerFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 1)
		assert.Equal(t, "Anita", list[0].Name)
	})
}

func TestCustomerRepository_Delete(t *testing.T) {
	db := OpenSQLite(t)
	repo := NewCustomerRepository(db)
	txRepo := NewTransactionRepository(db)
	ctx, _ := SeedStore(t, db, "1111111")
	otherCtx, _ := SeedStore(t, db, "2222222")

	c := SeedCustomer(t, ctx, db, "Ravi")
	txn, err := txRepo.Create(ctx, &model.Transaction{
		CustomerID: &c.ID,
		Amount:     decimal.NewFromInt(50),
		Type:       model.TransactionCredit,
		Method:     model.MethodCash,
		Date:       time.Now().UTC(),
	})
	require.NoError(t, err)

	t.Run("other store cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(otherCtx, c.ID), model.ErrNotFound)
	})

	t.Run("delete detaches transactions", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, c.ID))

		_, err := repo.Get(ctx, c.ID)
		assert.ErrorIs(t, err, model.ErrNotFound)

		got, err := txRepo.Get(ctx, txn.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CustomerID)
	})
}
