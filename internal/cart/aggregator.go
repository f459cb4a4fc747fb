package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmagsino/backend-tindahan/internal/catalog"
	"github.com/rmagsino/backend-tindahan/internal/pricing"
)

// ErrNotFound indicates the requested cart or line could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnitNotInCatalog is returned when a selected unit does not belong to
// the product's resolved catalog. The aggregator never guesses a substitute.
var ErrUnitNotInCatalog = errors.New("unit not in catalog")

// Line is a single cart row. Lines partition by (ProductID, BaseTier): base
// unit selections and sub-unit selections of the same product never merge.
type Line struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	BaseTier  bool            `json:"baseTier"`
	// Quantity counts whole base units on a base-tier line and accumulated
	// base-measure quantity (e.g. kilograms) on a sub-unit line.
	Quantity     float64         `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
	SelectedUnit catalog.Unit    `json:"selectedUnit"`
}

// BaseQuantity expresses the line's quantity in the base measure, for
// display alongside sub-unit lines.
func (l Line) BaseQuantity() float64 {
	if l.BaseTier {
		return l.Quantity * l.SelectedUnit.ConversionFactor
	}
	return l.Quantity
}

// Cart is the full cart value. All mutations return an updated copy; the
// caller owns serialization of concurrent snapshots.
type Cart struct {
	ID        string    `json:"id"`
	AnonID    string    `json:"anonId,omitempty"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subtotal sums all line totals at full precision.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

// Add merges one instance of the selected unit into the cart and returns the
// updated cart value. Repeated additions of the same (product, tier) pair
// collapse into a single line with summed quantity; the existing line's unit
// price stays authoritative so merging different sub-unit denominations
// remains price-consistent.
func Add(c Cart, p catalog.Product, units []catalog.Unit, selected catalog.Unit, newID func() string) (Cart, error) {
	if !p.Sellable() || len(units) == 0 {
		return c, fmt.Errorf("product %s has no units: %w", p.ID, ErrInvalidInput)
	}
	if !contains(units, selected) {
		return c, fmt.Errorf("unit %q for product %s: %w", selected.ID, p.ID, ErrUnitNotInCatalog)
	}
	if newID == nil {
		return c, fmt.Errorf("line id generator required: %w", ErrInvalidInput)
	}

	baseTier := selected.IsBaseUnit
	delta := 1.0
	if !baseTier {
		if selected.ConversionFactor <= 0 {
			return c, fmt.Errorf("unit %q has non-positive conversion factor: %w", selected.ID, ErrInvalidInput)
		}
		delta = selected.ConversionFactor
	}

	out := clone(c)
	for i, l := range out.Lines {
		if l.ProductID != p.ID || l.BaseTier != baseTier {
			continue
		}
		l.Quantity += delta
		l.LineTotal = mulQty(l.Quantity, l.UnitPrice)
		l.SelectedUnit = selected
		out.Lines[i] = l
		return out, nil
	}

	// Sub-unit lines are priced per base-measure unit, never per the chosen
	// denomination, so a 10kg add and a 5kg add share one rate.
	unitPrice := selected.Price
	if !baseTier {
		rate, err := pricing.PerMeasureRate(units)
		if err != nil {
			return c, err
		}
		unitPrice = rate
	}
	out.Lines = append(out.Lines, Line{
		ID:           newID(),
		ProductID:    p.ID,
		Title:        p.Title,
		BaseTier:     baseTier,
		Quantity:     delta,
		UnitPrice:    unitPrice,
		LineTotal:    mulQty(delta, unitPrice),
		SelectedUnit: selected,
	})
	return out, nil
}

// UpdateQuantity sets a line's quantity and recomputes its total from the
// stored unit price.
func UpdateQuantity(c Cart, lineID string, qty float64) (Cart, error) {
	if qty <= 0 {
		return c, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	out := clone(c)
	for i, l := range out.Lines {
		if l.ID != lineID {
			continue
		}
		l.Quantity = qty
		l.LineTotal = mulQty(qty, l.UnitPrice)
		out.Lines[i] = l
		return out, nil
	}
	return c, fmt.Errorf("line %s: %w", lineID, ErrNotFound)
}

// Remove deletes a line from the cart.
func Remove(c Cart, lineID string) (Cart, error) {
	out := clone(c)
	for i, l := range out.Lines {
		if l.ID != lineID {
			continue
		}
		out.Lines = append(out.Lines[:i], out.Lines[i+1:]...)
		return out, nil
	}
	return c, fmt.Errorf("line %s: %w", lineID, ErrNotFound)
}

func contains(units []catalog.Unit, u catalog.Unit) bool {
	for _, candidate := range units {
		if candidate.ID == u.ID {
			return true
		}
	}
	return false
}

func mulQty(qty float64, price decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(qty).Mul(price)
}

func clone(c Cart) Cart {
	out := c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	return out
}
