package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
)

// CartRecord is the server-held working set for one operator's in-progress
// sale. At most one active cart exists per operator.
type CartRecord struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OperatorID      uuid.UUID           `gorm:"column:operator_id;type:uuid;not null;index"`
	Status          enums.CartStatus    `gorm:"column:status;not null;default:'active'"`
	CustomerID      *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	DiscountPercent float64             `gorm:"column:discount_percent;not null;default:0"`
	TaxPercent      float64             `gorm:"column:tax_percent;not null;default:0"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null;default:'cash'"`
	Notes           *string             `gorm:"column:notes"`
	Items           []CartItem          `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartItem snapshots a product at add-time; the name and unit price stay as
// they were when the operator added the line.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	Name      string    `gorm:"column:name;not null"`
	UnitPrice float64   `gorm:"column:unit_price;not null"`
	Qty       int       `gorm:"column:qty;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Subtotal derives the line subtotal from the captured unit price.
func (c CartItem) Subtotal() float64 {
	return c.UnitPrice * float64(c.Qty)
}
