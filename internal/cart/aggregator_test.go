package cart_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rmagsino/backend-tindahan/internal/cart"
	"github.com/rmagsino/backend-tindahan/internal/catalog"
)

func ammoniumSulfate() catalog.Product {
	return catalog.Product{
		ID:    "prod-amsul",
		SKU:   "FERT-AMSUL-21",
		Title: "Ammonium Sulfate 21-0-0",
		Price: decimal.NewFromInt(1400),
		Units: []catalog.Unit{
			{ID: "sack", Label: "50kg", ConversionFactor: 50, IsBaseUnit: true, Price: decimal.NewFromInt(1400), MinSellable: 0.25},
			{ID: "kilo", Label: "1kg", ConversionFactor: 1, Price: decimal.NewFromInt(30), MinSellable: 0.25},
		},
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
}

func unitByID(t *testing.T, units []catalog.Unit, id string) catalog.Unit {
	t.Helper()
	for _, u := range units {
		if u.ID == id {
			return u
		}
	}
	t.Fatalf("unit %s not resolved", id)
	return catalog.Unit{}
}

func TestAddSeparatesTiers(t *testing.T) {
	p := ammoniumSulfate()
	units := catalog.Resolver{}.Resolve(p)
	newID := sequentialIDs()

	c, err := cart.Add(cart.Cart{ID: "c1"}, p, units, unitByID(t, units, "sack"), newID)
	require.NoError(t, err)
	c, err = cart.Add(c, p, units, unitByID(t, units, "dyn-10kg"), newID)
	require.NoError(t, err)

	require.Len(t, c.Lines, 2)
	require.True(t, c.Lines[0].BaseTier)
	require.False(t, c.Lines[1].BaseTier)

	// Order of addition never changes the partition.
	d, err := cart.Add(cart.Cart{ID: "c2"}, p, units, unitByID(t, units, "dyn-10kg"), sequentialIDs())
	require.NoError(t, err)
	d, err = cart.Add(d, p, units, unitByID(t, units, "sack"), sequentialIDs())
	require.NoError(t, err)
	require.Len(t, d.Lines, 2)
}

func TestAddMergesWithinTier(t *testing.T) {
	p := ammoniumSulfate()
	units := catalog.Resolver{}.Resolve(p)
	newID := sequentialIDs()

	var c cart.Cart
	var err error
	c = cart.Cart{ID: "c1"}
	for i := 0; i < 3; i++ {
		c, err = cart.Add(c, p, units, unitByID(t, units, "sack"), newID)
		require.NoError(t, err)
	}
	require.Len(t, c.Lines, 1)
	require.InDelta(t, 3, c.Lines[0].Quantity, 1e-9)
	require.Equal(t, "4200", c.Lines[0].LineTotal.String())
	require.InDelta(t, 150, c.Lines[0].BaseQuantity(), 1e-9)
}

func TestAddSubTierAccumulatesMeasure(t *testing.T) {
	p := ammoniumSulfate()
	units := catalog.Resolver{}.Resolve(p)
	newID := sequentialIDs()

	// 25kg + 25kg + 10kg of loose fertilizer collapse into one 60kg line.
	c := cart.Cart{ID: "c1"}
	var err error
	for _, id := range []string{"dyn-25kg", "dyn-25kg", "dyn-10kg"} {
		c, err = cart.Add(c, p, units, unitByID(t, units, id), newID)
		require.NoError(t, err)
	}
	require.Len(t, c.Lines, 1)
	l := c.Lines[0]
	require.False(t, l.BaseTier)
	require.InDelta(t, 60, l.Quantity, 1e-9)
	// Sub-tier lines carry the per-measure rate, not the denomination price.
	require.Equal(t, "30", l.UnitPrice.String())
	require.Equal(t, "1800", l.LineTotal.String())
}

func TestMixedTierScenario(t *testing.T) {
	p := ammoniumSulfate()
	units := catalog.Resolver{}.Resolve(p)
	newID := sequentialIDs()

	c := cart.Cart{ID: "c1"}
	var err error
	adds := []string{"sack", "dyn-25kg", "dyn-25kg", "dyn-10kg"}
	for _, id := range adds {
		c, err = cart.Add(c, p, units, unitByID(t, units, id), newID)
		require.NoError(t, err)
	}

	require.Len(t, c.Lines, 2)
	base, sub := c.Lines[0], c.Lines[1]
	require.True(t, base.BaseTier)
	require.Equal(t, "1400", base.LineTotal.String())
	require.InDelta(t, 50, base.BaseQuantity(), 1e-9)

	require.InDelta(t, 60, sub.Quantity, 1e-9)
	require.Equal(t, "1800", sub.LineTotal.String())

	require.Equal(t, "3200", c.Subtotal().String())
}

func TestAddFirstWriteWinsRate(t *testing.T) {
	p := ammoniumSulfate()
	units := catalog.Resolver{}.Resolve(p)
	newID := sequentialIDs()

	c, err := cart.Add(cart.Cart{ID: "c1"}, p, units, unitByID(t, units, "dyn-10kg"), newID)
	require.NoError(t, err)
	rate := c.Lines[0].UnitPrice

	// A catalog reprice between adds must not reprice the existing line.
	repriced := ammoniumSulfate()
	repriced.Units[1].Price = decimal.NewFromInt(45)
	newUnits := catalog.Resolver{}.Resolve(repriced)

	c, err = cart.Add(c, repriced, newUnits, unitByID(t, newUnits, "dyn-5kg"), newID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.True(t, c.Lines[0].UnitPrice.Equal(rate))
	require.Equal(t, "450", c.Lines[0].LineTotal.String())
}

func TestAddRejectsUnknownUnit(t *testing.T) {
	p := ammoniumSulfate()
	units := catalog.Resolver{}.Resolve(p)

	_, err := cart.Add(cart.Cart{}, p, units, catalog.Unit{ID: "dyn-3kg", ConversionFactor: 3}, sequentialIDs())
	require.ErrorIs(t, err, cart.ErrUnitNotInCatalog)
}

func TestAddRejectsUnsellableProduct(t *testing.T) {
	p := catalog.Product{ID: "prod-empty", Title: "Placeholder"}
	_, err := cart.Add(cart.Cart{}, p, nil, catalog.Unit{ID: "x"}, sequentialIDs())
	require.ErrorIs(t, err, cart.ErrInvalidInput)
}

func TestAddIsPure(t *testing.T) {
	p := ammoniumSulfate()
	units := catalog.Resolver{}.Resolve(p)
	newID := sequentialIDs()

	c, err := cart.Add(cart.Cart{ID: "c1"}, p, units, unitByID(t, units, "sack"), newID)
	require.NoError(t, err)
	snapshot := c.Lines[0]

	_, err = cart.Add(c, p, units, unitByID(t, units, "sack"), newID)
	require.NoError(t, err)
	require.Equal(t, snapshot, c.Lines[0], "input cart mutated")
}

func TestUpdateQuantity(t *testing.T) {
	p := ammoniumSulfate()
	units := catalog.Resolver{}.Resolve(p)

	c, err := cart.Add(cart.Cart{ID: "c1"}, p, units, unitByID(t, units, "dyn-10kg"), sequentialIDs())
	require.NoError(t, err)

	c, err = cart.UpdateQuantity(c, c.Lines[0].ID, 37.5)
	require.NoError(t, err)
	require.Equal(t, "1125", c.Lines[0].LineTotal.String())

	_, err = cart.UpdateQuantity(c, c.Lines[0].ID, 0)
	require.ErrorIs(t, err, cart.ErrInvalidInput)
	_, err = cart.UpdateQuantity(c, "line-missing", 2)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestRemoveLine(t *testing.T) {
	p := ammoniumSulfate()
	units := catalog.Resolver{}.Resolve(p)
	newID := sequentialIDs()

	c, err := cart.Add(cart.Cart{ID: "c1"}, p, units, unitByID(t, units, "sack"), newID)
	require.NoError(t, err)
	c, err = cart.Add(c, p, units, unitByID(t, units, "kilo"), newID)
	require.NoError(t, err)

	c, err = cart.Remove(c, c.Lines[0].ID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.False(t, c.Lines[0].BaseTier)

	_, err = cart.Remove(c, "line-404")
	require.ErrorIs(t, err, cart.ErrNotFound)
}
