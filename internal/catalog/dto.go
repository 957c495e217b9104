package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

// ProductDTO is the catalog read model returned to controllers.
type ProductDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description,omitempty"`
	SKU               *string   `json:"sku,omitempty"`
	Barcode           *string   `json:"barcode,omitempty"`
	Category          *string   `json:"category,omitempty"`
	Price             float64   `json:"price"`
	Cost              *float64  `json:"cost,omitempty"`
	Stock             int       `json:"stock"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	LowStock          bool      `json:"low_stock"`
	ImageURL          *string   `json:"image_url,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:                product.ID,
		Name:              product.Name,
		Description:       product.Description,
		SKU:               product.SKU,
		Barcode:           product.Barcode,
		Category:          product.Category,
		Price:             product.Price,
		Cost:              product.Cost,
		Stock:             product.Stock,
		LowStockThreshold: product.LowStockThreshold,
		LowStock:          product.Stock <= product.LowStockThreshold,
		ImageURL:          product.ImageURL,
		IsActive:          product.IsActive,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}

// ListResult is one page of catalog rows.
type ListResult struct {
	Products   []models.Product
	NextCursor string
}

// ListProductsInput captures filter and pagination inputs for the list endpoint.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListProductsOutput is the paginated DTO projection.
type ListProductsOutput struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name              string
	Description       *string
	SKU               *string
	Barcode           *string
	Category          *string
	Price             float64
	Cost              *float64
	Stock             int
	LowStockThreshold int
	ImageURL          *string
	IsActive          *bool
}

// UpdateProductInput holds optional mutation values for a product. Stock is
// deliberately absent; it only moves through the stock operations.
type UpdateProductInput struct {
	Name              *string
	Description       *string
	SKU               *string
	Barcode           *string
	Category          *string
	Price             *float64
	Cost              *float64
	LowStockThreshold *int
	ImageURL          *string
	IsActive          *bool
}
