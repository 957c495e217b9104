package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
)

// Customer is an account that can be attached to sales and invoices. Vehicles
// are fully owned sub-records with no independent lifecycle.
type Customer struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name           string               `gorm:"column:name;not null"`
	Email          string               `gorm:"column:email;not null"`
	Phone          string               `gorm:"column:phone;not null"`
	Address        *string              `gorm:"column:address"`
	City           *string              `gorm:"column:city"`
	State          *string              `gorm:"column:state"`
	ZipCode        *string              `gorm:"column:zip_code"`
	Country        *string              `gorm:"column:country"`
	Notes          *string              `gorm:"column:notes"`
	Status         enums.CustomerStatus `gorm:"column:status;not null;default:'active'"`
	TotalPurchases float64              `gorm:"column:total_purchases;not null;default:0"`
	LastPurchaseAt *time.Time           `gorm:"column:last_purchase_at"`
	Vehicles       []Vehicle            `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Vehicle belongs to exactly one customer.
type Vehicle struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID   uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`
	Make         string    `gorm:"column:make;not null"`
	Model        string    `gorm:"column:model;not null"`
	Year         int       `gorm:"column:year;not null"`
	LicensePlate *string   `gorm:"column:license_plate"`
	VIN          *string   `gorm:"column:vin"`
	Color        *string   `gorm:"column:color"`
	Notes        *string   `gorm:"column:notes"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
