package services

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/bookkeeper/internal/events"
	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transactionFixture struct {
	ctx       context.Context
	customer  *model.Customer
	foreign   *model.Customer
	publisher *recordingPublisher
	svc       *TransactionService
}

func newTransactionFixture(t *testing.T) *transactionFixture {
	t.Helper()
	db := repository.OpenSQLite(t)
	ctx, _ := repository.SeedStore(t, db, "1111111")
	otherCtx, _ := repository.SeedStore(t, db, "2222222")
	f := &transactionFixture{
		ctx:       ctx,
		customer:  repository.SeedCustomer(t, ctx, db, "Meena"),
		foreign:   repository.SeedCustomer(t, otherCtx, db, "Elsewhere"),
		publisher: &recordingPublisher{},
	}
	f.svc = NewTransactionService(repository.NewTransactionRepository(db), repository.NewCustomerRepository(db), f.publisher)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return f
}

func dateOf(y int, m time.Month, d int) *model.Date {
	v := model.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &v
}

func TestTransactionService_Create(t *testing.T) {
	f := newTransactionFixture(t)

	t.Run("defaults", func(t *testing.T) {
		txn, err := f.svc.Create(f.ctx, model.TransactionCreateRequest{
			CustomerID: &f.customer.ID,
			Amount:     dec("99.5"),
			Type:       model.TransactionCredit,
		})
		require.NoError(t, err)
		assert.Equal(t, model.MethodCash, txn.Method)
		assert.True(t, txn.Date.Equal(f.svc.now()))

		require.Len(t, f.publisher.events, 1)
		e := f.publisher.events[0]
		assert.Equal(t, events.TransactionCreated, e.Type)
		assert.Equal(t, []int64{f.customer.ID}, e.CustomerIDs)
		assert.Equal(t, txn.ID, *e.TransactionID)
	})

	t.Run("category on credit", func(t *testing.T) {
		rent := model.CategoryRent
		_, err := f.svc.Create(f.ctx, model.TransactionCreateRequest{Amount: dec("1"), Type: model.TransactionCredit, Category: &rent})
		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "category", verr.Fields[0].Field)
	})

	t.Run("non positive amount", func(t *testing.T) {
		_, err := f.svc.Create(f.ctx, model.TransactionCreateRequest{Amount: dec("0"), Type: model.TransactionDebit})
		var verr *model.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("customer of another store", func(t *testing.T) {
		_, err := f.svc.Create(f.ctx, model.TransactionCreateRequest{CustomerID: &f.foreign.ID, Amount: dec("1"), Type: model.TransactionCredit})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("publish failure does not fail the call", func(t *testing.T) {
		f.publisher.err = assert.AnError
		defer func() { f.publisher.err = nil }()
		_, err := f.svc.Create(f.ctx, model.TransactionCreateRequest{Amount: dec("1"), Type: model.TransactionDebit})
		assert.NoError(t, err)
	})
}

func TestTransactionService_UpdateAndDelete(t *testing.T) {
	f := newTransactionFixture(t)
	inventory := model.CategoryInventory
	txn, err := f.svc.Create(f.ctx, model.TransactionCreateRequest{
		Amount:   dec("40"),
		Type:     model.TransactionDebit,
		Category: &inventory,
		Date:     dateOf(2024, 3, 1),
	})
	require.NoError(t, err)

	t.Run("switching to credit drops the category", func(t *testing.T) {
		credit := model.TransactionCredit
		updated, err := f.svc.Update(f.ctx, txn.ID, model.TransactionUpdateRequest{Type: &credit, CustomerID: &f.customer.ID})
		require.NoError(t, err)
		assert.Equal(t, model.TransactionCredit, updated.Type)
		assert.Nil(t, updated.Category)
		assert.Equal(t, "40.00", updated.Amount.StringFixed(2))
		assert.Equal(t, events.TransactionUpdated, f.publisher.events[len(f.publisher.events)-1].Type)
	})

	t.Run("category on a credit", func(t *testing.T) {
		rent := model.CategoryRent
		_, err := f.svc.Update(f.ctx, txn.ID, model.TransactionUpdateRequest{Category: &rent})
		var verr *model.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("foreign customer", func(t *testing.T) {
		_, err := f.svc.Update(f.ctx, txn.ID, model.TransactionUpdateRequest{CustomerID: &f.foreign.ID})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(f.ctx, txn.ID))
		last := f.publisher.events[len(f.publisher.events)-1]
		assert.Equal(t, events.TransactionDeleted, last.Type)
		assert.Equal(t, []int64{f.customer.ID}, last.CustomerIDs)

		_, err := f.svc.Get(f.ctx, txn.ID)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.ErrorIs(t, f.svc.Delete(f.ctx, txn.ID), model.ErrNotFound)
	})
}

func TestTransactionService_ListAndReport(t *testing.T) {
	f := newTransactionFixture(t)
	seed := []model.TransactionCreateRequest{
		{Amount: dec("10"), Type: model.TransactionCredit, Date: dateOf(2024, 3, 1)},
		{Amount: dec("29"), Type: model.TransactionCredit, Date: dateOf(2024, 3, 15)},
		{Amount: dec("7"), Type: model.TransactionDebit, Date: dateOf(2024, 3, 10)},
		{Amount: dec("100"), Type: model.TransactionCredit, Date: dateOf(2024, 2, 29)},
		{Amount: dec("55"), Type: model.TransactionDebit, Date: dateOf(2023, 12, 31)},
	}
	for _, req := range seed {
		_, err := f.svc.Create(f.ctx, req)
		require.NoError(t, err)
	}

	t.Run("list", func(t *testing.T) {
		debit := model.TransactionDebit
		list, err := f.svc.List(f.ctx, model.TransactionFilter{Type: &debit})
		require.NoError(t, err)
		assert.Len(t, list.Transactions, 2)
		assert.Equal(t, int64(2), list.Pagination.Total)
		assert.Equal(t, model.DefaultPageLimit, list.Pagination.Limit)
	})

	t.Run("this month", func(t *testing.T) {
		r, err := f.svc.Report(f.ctx, "this_month")
		require.NoError(t, err)
		assert.Len(t, r.Transactions, 3)
		assert.Equal(t, "39", r.CreditTotal.String())
		assert.Equal(t, "7", r.DebitTotal.String())
		assert.Equal(t, "32", r.Net.String())
		assert.True(t, r.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("last month", func(t *testing.T) {
		r, err := f.svc.Report(f.ctx, "last_month")
		require.NoError(t, err)
		require.Len(t, r.Transactions, 1)
		assert.Equal(t, "100", r.CreditTotal.String())
	})

	t.Run("last 90 days reaches into december", func(t *testing.T) {
		r, err := f.svc.Report(f.ctx, "last_90_days")
		require.NoError(t, err)
		assert.Len(t, r.Transactions, 5)
		assert.Equal(t, "62", r.DebitTotal.String())
	})

	t.Run("this year", func(t *testing.T) {
		r, err := f.svc.Report(f.ctx, "this_year")
		require.NoError(t, err)
		assert.Len(t, r.Transactions, 4)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, err := f.svc.Report(f.ctx, "forever")
		var verr *model.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}
