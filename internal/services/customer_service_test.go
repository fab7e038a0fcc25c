package services

import (
	"testing"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService(t *testing.T) {
	db := repository.OpenSQLite(t)
	ctx, store := repository.SeedStore(t, db, "1111111")
	svc := NewCustomerService(repository.NewCustomerRepository(db))

	created, err := svc.Create(ctx, model.CustomerCreateRequest{Name: "  Asha ", Phone: "9000000001"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", created.Name)
	assert.Equal(t, store.ID, created.StoreID)

	t.Run("invalid email", func(t *testing.T) {
		bad := "not-an-email"
		_, err := svc.Create(ctx, model.CustomerCreateRequest{Name: "B", Phone: "9000000002", Email: &bad})
		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "email", verr.Fields[0].Field)
	})

	t.Run("duplicate phone", func(t *testing.T) {
		_, err := svc.Create(ctx, model.CustomerCreateRequest{Name: "B", Phone: "9000000001"})
		assert.ErrorIs(t, err, model.ErrConflict)
	})

	t.Run("partial update", func(t *testing.T) {
		addr := "4 Lake View"
		updated, err := svc.Update(ctx, created.ID, model.CustomerUpdateRequest{Address: &addr})
		require.NoError(t, err)
		assert.Equal(t, "Asha", updated.Name)
		require.NotNil(t, updated.Address)
		assert.Equal(t, addr, *updated.Address)
	})

	t.Run("list", func(t *testing.T) {
		customers, page, err := svc.List(ctx, model.CustomerFilter{Search: "as"})
		require.NoError(t, err)
		assert.Len(t, customers, 1)
		assert.Equal(t, model.Pagination{Total: 1, Limit: model.DefaultPageLimit}, page)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, created.ID))
		_, err := svc.Get(ctx, created.ID)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
