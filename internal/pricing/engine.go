package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rmagsino/backend-tindahan/internal/catalog"
)

// ErrNoUnits indicates the product has no purchasable units configured.
var ErrNoUnits = errors.New("product has no units")

// ErrInvalidQuantity is returned for zero or negative requested quantities.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// remainderFloor is the residual below which a decomposition remainder is
// treated as floating noise rather than a sellable quantity.
const remainderFloor = 1e-9

// Mode identifies which pricing branch produced a quote. The checkout UI
// renders a different price explanation per branch.
type Mode string

const (
	// ModePerMeasure prices the whole quantity linearly from the smallest
	// unit's per-measure rate (quantity below one base unit).
	ModePerMeasure Mode = "per_measure"
	// ModeBaseExact charges the fixed base-unit price for whole base units.
	ModeBaseExact Mode = "base_exact"
	// ModeBasePlusRemainder combines whole base units at the bulk price
	// with a linearly priced remainder.
	ModeBasePlusRemainder Mode = "base_plus_remainder"
	// ModeFlat falls back to the product's flat price when no base unit is
	// configured. No tiering applies.
	ModeFlat Mode = "flat"
)

// Quote is the result of pricing a requested base-measure quantity.
type Quote struct {
	ProductID      string          `json:"productId"`
	Quantity       float64         `json:"quantity"`
	Mode           Mode            `json:"mode"`
	BaseCount      int64           `json:"baseCount"`
	Remainder      float64         `json:"remainder"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	PerMeasureRate decimal.Decimal `json:"perMeasureRate"`
	Total          decimal.Decimal `json:"total"`
	AmbiguousBase  bool            `json:"-"`
}

// DisplayTotal rounds the total to two decimal places for storage and
// rendering. Total itself keeps full precision so repeated cart merges do
// not compound rounding error.
func (q Quote) DisplayTotal() decimal.Decimal {
	return q.Total.Round(2)
}

// PerMeasureRate derives the linear price per base-measure unit from the
// smallest denomination in the resolved catalog.
func PerMeasureRate(units []catalog.Unit) (decimal.Decimal, error) {
	smallest, ok := catalog.SmallestUnit(units)
	if !ok {
		return decimal.Zero, ErrNoUnits
	}
	if smallest.ConversionFactor <= 0 {
		return decimal.Zero, fmt.Errorf("unit %q has non-positive conversion factor", smallest.ID)
	}
	return smallest.Price.Div(decimal.NewFromFloat(smallest.ConversionFactor)), nil
}

// Compute prices the requested quantity (expressed in the base measure)
// against the product's resolved unit catalog.
//
// Exact multiples of the base unit use its fixed bulk price; quantities
// below one base unit are priced strictly linearly from the smallest unit;
// anything in between decomposes into whole base units plus a linear
// remainder. The resulting curve is intentionally not smooth at the
// base-unit boundary: a sack is cheaper than its weight in loose kilos.
func Compute(p catalog.Product, units []catalog.Unit, qty float64) (Quote, error) {
	if qty <= 0 {
		return Quote{}, fmt.Errorf("quantity %v: %w", qty, ErrInvalidQuantity)
	}
	if len(p.Units) == 0 || len(units) == 0 {
		return Quote{}, fmt.Errorf("product %s: %w", p.ID, ErrNoUnits)
	}

	q := Quote{ProductID: p.ID, Quantity: qty}

	base, hasBase, ambiguous := catalog.BaseUnit(p.Units)
	q.AmbiguousBase = ambiguous
	if !hasBase || base.ConversionFactor <= 0 {
		q.Mode = ModeFlat
		q.Total = p.Price.Mul(decimal.NewFromFloat(qty))
		return q, nil
	}

	rate, err := PerMeasureRate(units)
	if err != nil {
		return Quote{}, err
	}
	q.BasePrice = base.Price
	q.PerMeasureRate = rate
	baseMeasure := base.ConversionFactor

	switch {
	case catalog.SameDenomination(qty, baseMeasure):
		// Returning the configured price directly avoids floating drift
		// from the per-measure route.
		q.Mode = ModeBaseExact
		q.BaseCount = 1
		q.Total = base.Price
	case qty > baseMeasure:
		n := math.Floor(qty / baseMeasure)
		remainder := qty - n*baseMeasure
		if catalog.SameDenomination(remainder, baseMeasure) {
			n++
			remainder = 0
		}
		if remainder < remainderFloor {
			remainder = 0
		}
		q.BaseCount = int64(n)
		q.Remainder = remainder
		q.Total = base.Price.Mul(decimal.NewFromInt(q.BaseCount))
		if remainder > 0 {
			q.Mode = ModeBasePlusRemainder
			q.Total = q.Total.Add(rate.Mul(decimal.NewFromFloat(remainder)))
		} else {
			q.Mode = ModeBaseExact
		}
	default:
		q.Mode = ModePerMeasure
		q.Total = rate.Mul(decimal.NewFromFloat(qty))
	}
	return q, nil
}
