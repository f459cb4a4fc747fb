package catalog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// UnitMatchEpsilon is the tolerance used when comparing quantities against
// unit conversion factors. Configured catalogs carry floating values, so two
// denominations closer than this are treated as the same unit.
const UnitMatchEpsilon = 0.01

// DefaultMinSellable is the smallest quantity a product may be sold in when
// none of its configured units declares one.
const DefaultMinSellable = 0.25

// DefaultLadder lists the base-measure denominations the resolver offers as
// dynamic units, largest first.
var DefaultLadder = []float64{50, 25, 10, 5, 1, 0.5, 0.25}

// Unit is a purchasable denomination of a product.
type Unit struct {
	ID               string          `json:"id"`
	Label            string          `json:"label"`
	ConversionFactor float64         `json:"conversionFactor"`
	IsBaseUnit       bool            `json:"isBaseUnit"`
	Price            decimal.Decimal `json:"price"`
	MinSellable      float64         `json:"minSellable,omitempty"`
	Dynamic          bool            `json:"dynamic,omitempty"`
}

// Product aggregates a sellable item and its configured units.
type Product struct {
	ID    string          `json:"id"`
	SKU   string          `json:"sku"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Units []Unit          `json:"units"`
}

// Sellable reports whether the product has any configured unit at all.
func (p Product) Sellable() bool { return len(p.Units) > 0 }

// BaseUnit returns the first configured unit flagged as the base unit. The
// second return reports whether one was found, the third whether more than
// one unit carried the flag. First match wins when the flag is ambiguous.
func BaseUnit(units []Unit) (Unit, bool, bool) {
	var (
		base      Unit
		found     bool
		ambiguous bool
	)
	for _, u := range units {
		if !u.IsBaseUnit {
			continue
		}
		if found {
			ambiguous = true
			continue
		}
		base = u
		found = true
	}
	return base, found, ambiguous
}

// SmallestUnit returns the unit with the minimum conversion factor. It need
// not be the base unit; dynamic units participate in the comparison.
func SmallestUnit(units []Unit) (Unit, bool) {
	if len(units) == 0 {
		return Unit{}, false
	}
	smallest := units[0]
	for _, u := range units[1:] {
		if u.ConversionFactor < smallest.ConversionFactor {
			smallest = u
		}
	}
	return smallest, true
}

// SameDenomination reports whether two conversion factors describe the same
// purchasable denomination within the match tolerance.
func SameDenomination(a, b float64) bool {
	return math.Abs(a-b) < UnitMatchEpsilon
}

// Resolver derives the full purchasable unit catalog for a product,
// including dynamic denominations not explicitly configured. The ladder and
// measure suffix are injectable so alternate denomination schemes (liters
// instead of kilograms) need no code changes.
type Resolver struct {
	Ladder      []float64
	Measure     string
	MinSellable float64
}

func (r Resolver) ladder() []float64 {
	if len(r.Ladder) == 0 {
		return DefaultLadder
	}
	return r.Ladder
}

func (r Resolver) measure() string {
	if strings.TrimSpace(r.Measure) == "" {
		return "kg"
	}
	return r.Measure
}

func (r Resolver) fallbackMinSellable() float64 {
	if r.MinSellable <= 0 {
		return DefaultMinSellable
	}
	return r.MinSellable
}

// Resolve returns the complete unit catalog for the product, descending by
// conversion factor. A product with no configured units resolves to an empty
// catalog and must be treated as unsellable by the caller.
func (r Resolver) Resolve(p Product) []Unit {
	if len(p.Units) == 0 {
		return nil
	}

	minSellable := r.fallbackMinSellable()
	declared := false
	for _, u := range p.Units {
		if u.MinSellable <= 0 {
			continue
		}
		if !declared || u.MinSellable < minSellable {
			minSellable = u.MinSellable
			declared = true
		}
	}

	base, hasBase, _ := BaseUnit(p.Units)
	smallest, _ := SmallestUnit(p.Units)
	perMeasure := decimal.Zero
	if smallest.ConversionFactor > 0 {
		perMeasure = smallest.Price.Div(decimal.NewFromFloat(smallest.ConversionFactor))
	}

	units := make([]Unit, len(p.Units))
	copy(units, p.Units)

	for _, c := range r.ladder() {
		if c < minSellable {
			continue
		}
		if collides(units, c) {
			continue
		}
		units = append(units, Unit{
			ID:               dynamicUnitID(c, r.measure()),
			Label:            r.label(c),
			ConversionFactor: c,
			Price:            r.displayPrice(c, base, hasBase, perMeasure),
			Dynamic:          true,
		})
	}

	sort.SliceStable(units, func(i, j int) bool {
		return units[i].ConversionFactor > units[j].ConversionFactor
	})
	return units
}

// displayPrice assigns a default price to a dynamic unit. Exact whole
// multiples of the base unit inherit the proportional bulk price; everything
// else is priced linearly from the smallest configured unit. Authoritative
// pricing happens in the pricing package; this value is for display.
func (r Resolver) displayPrice(c float64, base Unit, hasBase bool, perMeasure decimal.Decimal) decimal.Decimal {
	if hasBase && base.ConversionFactor > 0 {
		mult := c / base.ConversionFactor
		rounded := math.Round(mult)
		if rounded >= 1 && math.Abs(mult-rounded) < UnitMatchEpsilon {
			return base.Price.Mul(decimal.NewFromInt(int64(rounded)))
		}
	}
	return perMeasure.Mul(decimal.NewFromFloat(c))
}

func (r Resolver) label(c float64) string {
	switch {
	case c >= 1:
		return strconv.FormatFloat(c, 'f', -1, 64) + r.measure()
	case SameDenomination(c, 0.5):
		return "1/2"
	case SameDenomination(c, 0.25):
		return "1/4"
	default:
		return strconv.FormatFloat(c, 'f', -1, 64) + r.measure()
	}
}

func collides(units []Unit, c float64) bool {
	for _, u := range units {
		if SameDenomination(u.ConversionFactor, c) {
			return true
		}
	}
	return false
}

func dynamicUnitID(c float64, measure string) string {
	return fmt.Sprintf("dyn-%s%s", strconv.FormatFloat(c, 'f', -1, 64), measure)
}
