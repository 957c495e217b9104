package enums

import "fmt"

// CartWarningType classifies the advisory warnings surfaced by cart
// mutations. They are soft signals; the checkout transaction re-validates.
type CartWarningType string

const (
	CartWarningOutOfStock        CartWarningType = "out_of_stock"
	CartWarningInsufficientStock CartWarningType = "insufficient_stock"
	CartWarningProductInactive   CartWarningType = "product_inactive"
)

var validCartWarningTypes = []CartWarningType{
	CartWarningOutOfStock,
	CartWarningInsufficientStock,
	CartWarningProductInactive,
}

// String implements fmt.Stringer.
func (w CartWarningType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known CartWarningType.
func (w CartWarningType) IsValid() bool {
	for _, candidate := range validCartWarningTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseCartWarningType converts raw input into a CartWarningType.
func ParseCartWarningType(value string) (CartWarningType, error) {
	for _, candidate := range validCartWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart warning type %q", value)
}
