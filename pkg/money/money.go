package money

import (
	"fmt"
	"math"

	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
)

// Tolerance is the accepted drift when comparing recomputed monetary totals.
const Tolerance = 1e-6

// LineSubtotal returns unit price times quantity.
func LineSubtotal(unitPrice float64, qty int) float64 {
	return unitPrice * float64(qty)
}

// Line is the minimal shape the aggregate helpers need.
type Line struct {
	UnitPrice float64
	Qty       int
}

// Subtotal sums the line subtotals.
func Subtotal(lines []Line) float64 {
	var sum float64
	for _, line := range lines {
		sum += LineSubtotal(line.UnitPrice, line.Qty)
	}
	return sum
}

// ValidatePercent rejects discount/tax percentages outside [0, 100]. The UI
// constrains input too, but the computation boundary is authoritative.
func ValidatePercent(name string, percent float64) error {
	if percent < 0 || percent > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s percent must be between 0 and 100", name)).
			WithDetails(map[string]any{"field": name, "value": percent})
	}
	return nil
}

// DiscountAmount returns the absolute discount for a subtotal.
func DiscountAmount(subtotal, discountPercent float64) float64 {
	return subtotal * discountPercent / 100
}

// TaxAmount returns the tax computed over the discounted base.
func TaxAmount(taxableBase, taxPercent float64) float64 {
	return taxableBase * taxPercent / 100
}

// Totals carries every derived figure for a cart, sale, or invoice.
// Values are unrounded; rounding is a display concern.
type Totals struct {
	Subtotal    float64
	Discount    float64
	TaxableBase float64
	Tax         float64
	Total       float64
}

// Compute derives the full set of totals from lines and percentage rates.
func Compute(lines []Line, discountPercent, taxPercent float64) (Totals, error) {
	if err := ValidatePercent("discount", discountPercent); err != nil {
		return Totals{}, err
	}
	if err := ValidatePercent("tax", taxPercent); err != nil {
		return Totals{}, err
	}

	subtotal := Subtotal(lines)
	discount := DiscountAmount(subtotal, discountPercent)
	base := subtotal - discount
	tax := TaxAmount(base, taxPercent)

	return Totals{
		Subtotal:    subtotal,
		Discount:    discount,
		TaxableBase: base,
		Tax:         tax,
		Total:       base + tax,
	}, nil
}

// Consistent reports whether total matches subtotal - discount + tax within
// the shared tolerance.
func Consistent(subtotal, discount, tax, total float64) bool {
	return math.Abs(total-(subtotal-discount+tax)) <= Tolerance
}

// Round2 rounds to two decimals for display.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
