package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
)

// Sale is an append-only record of a completed transaction. Customer and item
// data are value snapshots taken at creation; later edits to the referenced
// product or customer never change a historical sale.
type Sale struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SaleNumber    string              `gorm:"column:sale_number;not null;uniqueIndex"`
	Date          time.Time           `gorm:"column:date;not null;index"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	CustomerEmail string              `gorm:"column:customer_email;not null"`
	CustomerPhone string              `gorm:"column:customer_phone;not null"`
	Items         []SaleItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Subtotal      float64             `gorm:"column:subtotal;not null"`
	Discount      float64             `gorm:"column:discount;not null;default:0"`
	Tax           float64             `gorm:"column:tax;not null;default:0"`
	Total         float64             `gorm:"column:total;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Notes         *string             `gorm:"column:notes"`
	Status        enums.SaleStatus    `gorm:"column:status;not null;default:'completed'"`
	OperatorID    uuid.UUID           `gorm:"column:operator_id;type:uuid;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleItem is the immutable per-line snapshot within a sale.
type SaleItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SaleID    uuid.UUID `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	UnitPrice float64   `gorm:"column:unit_price;not null"`
	Qty       int       `gorm:"column:qty;not null"`
	Subtotal  float64   `gorm:"column:subtotal;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (s *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
