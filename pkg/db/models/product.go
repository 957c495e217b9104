package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the canonical catalog entry. Stock is only ever mutated through
// the catalog stock operations inside a transaction, never by direct overwrite.
type Product struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name              string    `gorm:"column:name;not null"`
	Description       *string   `gorm:"column:description"`
	SKU               *string   `gorm:"column:sku"`
	Barcode           *string   `gorm:"column:barcode"`
	Category          *string   `gorm:"column:category"`
	Price             float64   `gorm:"column:price;not null"`
	Cost              *float64  `gorm:"column:cost"`
	Stock             int       `gorm:"column:stock;not null;default:0"`
	LowStockThreshold int       `gorm:"column:low_stock_threshold;not null;default:0"`
	ImageURL          *string   `gorm:"column:image_url"`
	IsActive          bool      `gorm:"column:is_active;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an ID so the model also works on drivers without a
// server-side uuid default (sqlite in dev/tests).
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
