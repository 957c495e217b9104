package cart

import (
	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/money"
)

// Warning is the advisory signal attached to cart mutations when a soft
// stock check fails. The mutation it refers to was not applied.
type Warning struct {
	Type      enums.CartWarningType `json:"type"`
	ProductID uuid.UUID             `json:"product_id"`
	Product   string                `json:"product"`
	Requested int                   `json:"requested,omitempty"`
	Available int                   `json:"available,omitempty"`
}

// LineDTO is one cart line with its derived subtotal.
type LineDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Qty       int       `json:"qty"`
	Subtotal  float64   `json:"subtotal"`
}

// CartDTO is the full cart read model including derived totals.
type CartDTO struct {
	ID              uuid.UUID           `json:"id"`
	OperatorID      uuid.UUID           `json:"operator_id"`
	Status          enums.CartStatus    `json:"status"`
	CustomerID      *uuid.UUID          `json:"customer_id,omitempty"`
	DiscountPercent float64             `json:"discount_percent"`
	TaxPercent      float64             `json:"tax_percent"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	Notes           *string             `json:"notes,omitempty"`
	Lines           []LineDTO           `json:"lines"`
	Subtotal        float64             `json:"subtotal"`
	DiscountAmount  float64             `json:"discount_amount"`
	TaxAmount       float64             `json:"tax_amount"`
	Total           float64             `json:"total"`
	Warnings        []Warning           `json:"warnings,omitempty"`
}

func toCartDTO(record *models.CartRecord, warnings []Warning) *CartDTO {
	if record == nil {
		return nil
	}

	lines := make([]LineDTO, 0, len(record.Items))
	moneyLines := make([]money.Line, 0, len(record.Items))
	for _, item := range record.Items {
		lines = append(lines, LineDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
			Subtotal:  item.Subtotal(),
		})
		moneyLines = append(moneyLines, money.Line{UnitPrice: item.UnitPrice, Qty: item.Qty})
	}

	// percentages were validated when set, so Compute cannot fail here
	totals, _ := money.Compute(moneyLines, record.DiscountPercent, record.TaxPercent)

	return &CartDTO{
		ID:              record.ID,
		OperatorID:      record.OperatorID,
		Status:          record.Status,
		CustomerID:      record.CustomerID,
		DiscountPercent: record.DiscountPercent,
		TaxPercent:      record.TaxPercent,
		PaymentMethod:   record.PaymentMethod,
		Notes:           record.Notes,
		Lines:           lines,
		Subtotal:        totals.Subtotal,
		DiscountAmount:  totals.Discount,
		TaxAmount:       totals.Tax,
		Total:           totals.Total,
		Warnings:        warnings,
	}
}

// AdjustmentsInput carries the cart-level knobs set before checkout.
type AdjustmentsInput struct {
	CustomerID      *uuid.UUID
	DiscountPercent *float64
	TaxPercent      *float64
	PaymentMethod   *enums.PaymentMethod
	Notes           *string
}
