package invoices

import (
	"time"

	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

// InvoiceItemDTO is one line of an invoice.
type InvoiceItemDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Qty       int       `json:"qty"`
	Subtotal  float64   `json:"subtotal"`
}

// InvoiceDTO is the read model for an invoice.
type InvoiceDTO struct {
	ID            uuid.UUID           `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	SaleID        *uuid.UUID          `json:"sale_id,omitempty"`
	IssueDate     time.Time           `json:"issue_date"`
	DueDate       time.Time           `json:"due_date"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
	Items         []InvoiceItemDTO    `json:"items"`
	Subtotal      float64             `json:"subtotal"`
	Discount      float64             `json:"discount"`
	Tax           float64             `json:"tax"`
	TaxRate       float64             `json:"tax_rate"`
	Total         float64             `json:"total"`
	Notes         *string             `json:"notes,omitempty"`
	Status        enums.InvoiceStatus `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toInvoiceDTO(invoice *models.Invoice) *InvoiceDTO {
	if invoice == nil {
		return nil
	}
	items := make([]InvoiceItemDTO, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, InvoiceItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
			Subtotal:  item.Subtotal,
		})
	}
	return &InvoiceDTO{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		SaleID:        invoice.SaleID,
		IssueDate:     invoice.IssueDate,
		DueDate:       invoice.DueDate,
		CustomerID:    invoice.CustomerID,
		CustomerName:  invoice.CustomerName,
		CustomerEmail: invoice.CustomerEmail,
		CustomerPhone: invoice.CustomerPhone,
		Items:         items,
		Subtotal:      invoice.Subtotal,
		Discount:      invoice.Discount,
		Tax:           invoice.Tax,
		TaxRate:       invoice.TaxRate,
		Total:         invoice.Total,
		Notes:         invoice.Notes,
		Status:        invoice.Status,
		PaymentStatus: invoice.PaymentStatus,
		CreatedAt:     invoice.CreatedAt,
	}
}

// ListResult carries one page of invoices out of the repository.
type ListResult struct {
	Invoices   []models.Invoice
	NextCursor string
}

// ListInvoicesInput is the service-level list request.
type ListInvoicesInput struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListInvoicesOutput is one page of invoices.
type ListInvoicesOutput struct {
	Invoices   []InvoiceDTO `json:"invoices"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ItemInput is one line of a standalone invoice request.
type ItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Qty       int       `json:"qty"`
}

// CreateStandaloneInput builds an invoice that is not backed by a sale.
type CreateStandaloneInput struct {
	CustomerID      uuid.UUID
	Items           []ItemInput
	DiscountPercent float64
	TaxPercent      float64
	Notes           *string
}

// UpdateInvoiceInput carries the mutable invoice header fields.
type UpdateInvoiceInput struct {
	Status        *enums.InvoiceStatus
	PaymentStatus *enums.PaymentStatus
	Notes         *string
	DueDate       *time.Time
}

// CreatedPayload is the event body emitted when an invoice is created.
type CreatedPayload struct {
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	InvoiceNumber string     `json:"invoice_number"`
	SaleID        *uuid.UUID `json:"sale_id,omitempty"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	Total         float64    `json:"total"`
}

// PaidPayload is the event body emitted when an invoice is settled.
type PaidPayload struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Total         float64   `json:"total"`
}
