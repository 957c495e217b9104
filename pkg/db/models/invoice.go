package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
)

// Invoice is a billing document derived from a sale (or created standalone).
// It owns its own copies of the item and customer data.
type Invoice struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceNumber string              `gorm:"column:invoice_number;not null;uniqueIndex"`
	SaleID        *uuid.UUID          `gorm:"column:sale_id;type:uuid;index"`
	IssueDate     time.Time           `gorm:"column:issue_date;not null;index"`
	DueDate       time.Time           `gorm:"column:due_date;not null"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	CustomerEmail string              `gorm:"column:customer_email;not null"`
	CustomerPhone string              `gorm:"column:customer_phone;not null"`
	Items         []InvoiceItem       `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Subtotal      float64             `gorm:"column:subtotal;not null"`
	Discount      float64             `gorm:"column:discount;not null;default:0"`
	Tax           float64             `gorm:"column:tax;not null;default:0"`
	TaxRate       float64             `gorm:"column:tax_rate;not null;default:0"`
	Total         float64             `gorm:"column:total;not null"`
	Notes         *string             `gorm:"column:notes"`
	Status        enums.InvoiceStatus `gorm:"column:status;not null;default:'draft'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvoiceItem mirrors SaleItem; invoices never share rows with the sale they
// were derived from.
type InvoiceItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceID uuid.UUID `gorm:"column:invoice_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	UnitPrice float64   `gorm:"column:unit_price;not null"`
	Qty       int       `gorm:"column:qty;not null"`
	Subtotal  float64   `gorm:"column:subtotal;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
