package repository

import (
	"testing"
	"time"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTransactionRepository_CreateAndGet(t *testing.T) {
	db := OpenSQLite(t)
	repo := NewTransactionRepository(db)
	ctx, store := SeedStore(t, db, "1111111")
	otherCtx, _ := SeedStore(t, db, "2222222")

	rent := model.CategoryRent
	created, err := repo.Create(ctx, &model.Transaction{
		Amount:      decimal.RequireFromString("1500.50"),
		Type:        model.TransactionDebit,
		Method:      model.MethodBankTransfer,
		Category:    &rent,
		Description: "March rent",
		Date:        day(2024, 3, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, store.ID, created.StoreID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1500.50", got.Amount.StringFixed(2))
	assert.Equal(t, model.TransactionDebit, got.Type)
	require.NotNil(t, got.Category)
	assert.Equal(t, model.CategoryRent, *got.Category)
	assert.True(t, got.Date.Equal(day(2024, 3, 1)))

	_, err = repo.Get(otherCtx, created.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTransactionRepository_ListAndFilters(t *testing.T) {
	db := OpenSQLite(t)
	repo := NewTransactionRepository(db)
	ctx, _ := SeedStore(t, db, "1111111")
	otherCtx, _ := SeedStore(t, db, "2222222")
	c := SeedCustomer(t, ctx, db, "Meena")

	seed := []*model.Transaction{
		{Amount: decimal.NewFromInt(10), Type: model.TransactionCredit, Method: model.MethodCash, Date: day(2024, 1, 10), CustomerID: &c.ID},
		{Amount: decimal.NewFromInt(20), Type: model.TransactionCredit, Method: model.MethodUPI, Date: day(2024, 2, 10)},
		{Amount: decimal.NewFromInt(5), Type: model.TransactionDebit, Method: model.MethodCash, Date: day(2024, 2, 20)},
		{Amount: decimal.NewFromInt(9), Type: model.TransactionCredit, Method: model.MethodCash, Date: day(2024, 3, 1), CustomerID: &c.ID},
	}
	for _, txn := range seed {
		_, err := repo.Create(ctx, txn)
		require.NoError(t, err)
	}
	_, err := repo.Create(otherCtx, &model.Transaction{
		Amount: decimal.NewFromInt(99), Type: model.TransactionCredit, Method: model.MethodCash, Date: day(2024, 2, 11),
	})
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		list, total, err := repo.List(ctx, model.TransactionFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, list, 4)
		assert.True(t, list[0].Date.Equal(day(2024, 3, 1)))
		assert.True(t, list[3].Date.Equal(day(2024, 1, 10)))
	})

	t.Run("by type", func(t *testing.T) {
		debit := model.TransactionDebit
		list, total, err := repo.List(ctx, model.TransactionFilter{Type: &debit})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "5", list[0].Amount.String())
	})

	t.Run("by customer", func(t *testing.T) {
		_, total, err := repo.List(ctx, model.TransactionFilter{CustomerID: &c.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("date range is half open", func(t *testing.T) {
		from, to := day(2024, 2, 1), day(2024, 3, 1)
		list, err := repo.ListBetween(ctx, from, to)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, list[0].Date.Before(list[1].Date))

		_, total, err := repo.List(ctx, model.TransactionFilter{From: &from, To: &to})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("credit total for customer", func(t *testing.T) {
		sum, err := repo.CreditTotalForCustomer(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "19.00", sum.StringFixed(2))

		sum, err = repo.CreditTotalForCustomer(ctx, 12345)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})
}

func TestTransactionRepository_UpdateAndDelete(t *testing.T) {
	db := OpenSQLite(t)
	repo := NewTransactionRepository(db)
	ctx, _ := SeedStore(t, db, "1111111")
	otherCtx, _ := SeedStore(t, db, "2222222")

	created, err := repo.Create(ctx, &model.Transaction{
		Amount: decimal.NewFromInt(10), Type: model.TransactionCredit, Method: model.MethodCash, Date: day(2024, 1, 10),
	})
	require.NoError(t, err)

	t.Run("update", func(t *testing.T) {
		txn := *created
		txn.Amount = decimal.RequireFromString("12.75")
		txn.Description = "corrected"
		updated, err := repo.Update(ctx, &txn)
		require.NoError(t, err)
		assert.Equal(t, "12.75", updated.Amount.StringFixed(2))
		assert.Equal(t, "corrected", updated.Description)
	})

	t.Run("other store cannot update or delete", func(t *testing.T) {
		_, err := repo.Update(otherCtx, created)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(otherCtx, created.ID), model.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, created.ID))
		_, err := repo.Get(ctx, created.ID)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, created.ID), model.ErrNotFound)
	})
}
