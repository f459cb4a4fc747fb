package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rmagsino/backend-tindahan/internal/cart"
	"github.com/rmagsino/backend-tindahan/internal/catalog"
)

type fakeCatalog struct {
	products map[string]catalog.Product
	resolver catalog.Resolver
}

func (f *fakeCatalog) Product(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Units(_ context.Context, p catalog.Product) []catalog.Unit {
	return f.resolver.Resolve(p)
}

func newTestService(t *testing.T) (*cart.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	fc := &fakeCatalog{products: map[string]catalog.Product{
		"prod-amsul": ammoniumSulfate(),
	}}
	svc := &cart.Service{
		Store:   &cart.Store{R: rdb, TTL: time.Hour},
		Catalog: fc,
		Logger:  zerolog.Nop(),
		NewID:   sequentialIDs(),
	}
	return svc, mr
}

func TestServiceCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "anon-1")
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Equal(t, "anon-1", c.AnonID)
	require.Empty(t, c.Lines)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)

	_, err = svc.Get(ctx, "cart-missing")
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestServiceAddItemRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "")
	require.NoError(t, err)

	c, err = svc.AddItem(ctx, c.ID, "prod-amsul", "sack")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		c, err = svc.AddItem(ctx, c.ID, "prod-amsul", "dyn-25kg")
		require.NoError(t, err)
	}
	c, err = svc.AddItem(ctx, c.ID, "prod-amsul", "dyn-10kg")
	require.NoError(t, err)

	// The persisted snapshot carries the merged lines, not the add history.
	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	require.Equal(t, "1400", got.Lines[0].LineTotal.String())
	require.Equal(t, "1800", got.Lines[1].LineTotal.String())
	require.True(t, got.Subtotal().Equal(decimal.NewFromInt(3200)))
}

func TestServiceAddItemErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "cart-missing", "prod-amsul", "sack")
	require.ErrorIs(t, err, cart.ErrNotFound)

	_, err = svc.AddItem(ctx, c.ID, "prod-ghost", "sack")
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.AddItem(ctx, c.ID, "prod-amsul", "dyn-3kg")
	require.ErrorIs(t, err, cart.ErrUnitNotInCatalog)
}

func TestServiceUpdateAndRemove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "")
	require.NoError(t, err)
	c, err = svc.AddItem(ctx, c.ID, "prod-amsul", "kilo")
	require.NoError(t, err)
	lineID := c.Lines[0].ID

	c, err = svc.UpdateItem(ctx, c.ID, lineID, 12)
	require.NoError(t, err)
	require.Equal(t, "360", c.Lines[0].LineTotal.String())

	_, err = svc.UpdateItem(ctx, c.ID, lineID, -1)
	require.ErrorIs(t, err, cart.ErrInvalidInput)

	c, err = svc.RemoveItem(ctx, c.ID, lineID)
	require.NoError(t, err)
	require.Empty(t, c.Lines)

	_, err = svc.RemoveItem(ctx, c.ID, lineID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestStoreRefreshesTTLOnSave(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "")
	require.NoError(t, err)
	key := "cart:" + c.ID
	require.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(30 * time.Minute)
	_, err = svc.AddItem(ctx, c.ID, "prod-amsul", "sack")
	require.NoError(t, err)
	require.Equal(t, time.Hour, mr.TTL(key))

	// Idle past the TTL the cart is gone.
	mr.FastForward(2 * time.Hour)
	_, err = svc.Get(ctx, c.ID)
	require.ErrorIs(t, err, cart.ErrNotFound)
}
