package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

// SaleItemDTO is one immutable line of a completed sale.
type SaleItemDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Qty       int       `json:"qty"`
	Subtotal  float64   `json:"subtotal"`
}

// SaleDTO is the read model for a completed sale.
type SaleDTO struct {
	ID            uuid.UUID           `json:"id"`
	SaleNumber    string              `json:"sale_number"`
	Date          time.Time           `json:"date"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
	Items         []SaleItemDTO       `json:"items"`
	Subtotal      float64             `json:"subtotal"`
	Discount      float64             `json:"discount"`
	Tax           float64             `json:"tax"`
	Total         float64             `json:"total"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Notes         *string             `json:"notes,omitempty"`
	Status        enums.SaleStatus    `json:"status"`
	OperatorID    uuid.UUID           `json:"operator_id"`
	CreatedAt     time.Time           `json:"created_at"`
}

func toSaleDTO(sale *models.Sale) *SaleDTO {
	if sale == nil {
		return nil
	}
	items := make([]SaleItemDTO, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, SaleItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
			Subtotal:  item.Subtotal,
		})
	}
	return &SaleDTO{
		ID:            sale.ID,
		SaleNumber:    sale.SaleNumber,
		Date:          sale.Date,
		CustomerID:    sale.CustomerID,
		CustomerName:  sale.CustomerName,
		CustomerEmail: sale.CustomerEmail,
		CustomerPhone: sale.CustomerPhone,
		Items:         items,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Tax:           sale.Tax,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Notes:         sale.Notes,
		Status:        sale.Status,
		OperatorID:    sale.OperatorID,
		CreatedAt:     sale.CreatedAt,
	}
}

// ListResult carries one page of sales out of the repository.
type ListResult struct {
	Sales      []models.Sale
	NextCursor string
}

// ListSalesInput is the service-level list request.
type ListSalesInput struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListSalesOutput is one page of the sales log.
type ListSalesOutput struct {
	Sales      []SaleDTO `json:"sales"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// UpdateSaleInput carries the mutable sale header fields. Items, totals and
// customer snapshots never change after completion.
type UpdateSaleInput struct {
	Status *enums.SaleStatus
	Notes  *string
}

// CompletedPayload is the event body emitted after a checkout commits.
type CompletedPayload struct {
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
	OperatorID uuid.UUID `json:"operator_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Total      float64   `json:"total"`
	Date       time.Time `json:"date"`
}

// DeletedPayload is the event body emitted after a sale is removed and its
// stock restored.
type DeletedPayload struct {
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
	CustomerID uuid.UUID `json:"customer_id"`
	Total      float64   `json:"total"`
}
