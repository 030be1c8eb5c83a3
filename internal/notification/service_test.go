package notification

import (
	"context"
	"testing"

	"localcart-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendorCtx(shopID int64) context.Context {
	ctx := utils.SetUserContext(context.Background(), 5, "vendor@example.com", utils.RoleVendor)
	return utils.SetShopContext(ctx, shopID)
}

func TestService_StreamShop(t *testing.T) {
	svc := NewService(new(MockRepository))

	t.Run("Own shop", func(t *testing.T) {
		shopID, err := svc.StreamShop(vendorCtx(7), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(7), shopID)

		shopID, err = svc.StreamShop(vendorCtx(7), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), shopID)
	})

	t.Run("Other shop", func(t *testing.T) {
		_, err := svc.StreamShop(vendorCtx(7), 8)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Anonymous", func(t *testing.T) {
		_, err := svc.StreamShop(context.Background(), 0)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Customer", func(t *testing.T) {
		ctx := utils.SetUserContext(context.Background(), 1, "c@example.com", utils.RoleCustomer)
		_, err := svc.StreamShop(ctx, 0)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Vendor without shop", func(t *testing.T) {
		ctx := utils.SetUserContext(context.Background(), 5, "v@example.com", utils.RoleVendor)
		_, err := svc.StreamShop(ctx, 0)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestService_List(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := vendorCtx(7)

	repo.On("ListByShop", ctx, int64(7), listLimit).Return([]Message{{ID: 1, ShopID: 7}}, nil)

	msgs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	repo.AssertExpectations(t)

	_, err = svc.List(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestService_MarkRead(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := vendorCtx(7)

	repo.On("MarkRead", ctx, int64(7), int64(3)).Return(nil)
	repo.On("MarkRead", ctx, int64(7), int64(4)).Return(ErrNotificationNotFound)

	assert.NoError(t, svc.MarkRead(ctx, 3))
	assert.ErrorIs(t, svc.MarkRead(ctx, 4), ErrNotificationNotFound)
	repo.AssertExpectations(t)
}
