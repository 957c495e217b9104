package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

// CustomerDTO is the customer read model returned to controllers.
type CustomerDTO struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	Address        *string              `json:"address,omitempty"`
	City           *string              `json:"city,omitempty"`
	State          *string              `json:"state,omitempty"`
	ZipCode        *string              `json:"zip_code,omitempty"`
	Country        *string              `json:"country,omitempty"`
	Notes          *string              `json:"notes,omitempty"`
	Status         enums.CustomerStatus `json:"status"`
	TotalPurchases float64              `json:"total_purchases"`
	LastPurchaseAt *time.Time           `json:"last_purchase_at,omitempty"`
	Vehicles       []VehicleDTO         `json:"vehicles"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// VehicleDTO is the owned vehicle read model.
type VehicleDTO struct {
	ID           uuid.UUID `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	LicensePlate *string   `json:"license_plate,omitempty"`
	VIN          *string   `json:"vin,omitempty"`
	Color        *string   `json:"color,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}

func toCustomerDTO(customer *models.Customer) *CustomerDTO {
	if customer == nil {
		return nil
	}
	vehicles := make([]VehicleDTO, 0, len(customer.Vehicles))
	for i := range customer.Vehicles {
		vehicles = append(vehicles, toVehicleDTO(&customer.Vehicles[i]))
	}
	return &CustomerDTO{
		ID:             customer.ID,
		Name:           customer.Name,
		Email:          customer.Email,
		Phone:          customer.Phone,
		Address:        customer.Address,
		City:           customer.City,
		State:          customer.State,
		ZipCode:        customer.ZipCode,
		Country:        customer.Country,
		Notes:          customer.Notes,
		Status:         customer.Status,
		TotalPurchases: customer.TotalPurchases,
		LastPurchaseAt: customer.LastPurchaseAt,
		Vehicles:       vehicles,
		CreatedAt:      customer.CreatedAt,
		UpdatedAt:      customer.UpdatedAt,
	}
}

func toVehicleDTO(vehicle *models.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:           vehicle.ID,
		Make:         vehicle.Make,
		Model:        vehicle.Model,
		Year:         vehicle.Year,
		LicensePlate: vehicle.LicensePlate,
		VIN:          vehicle.VIN,
		Color:        vehicle.Color,
		Notes:        vehicle.Notes,
	}
}

// ListResult is one page of customer rows.
type ListResult struct {
	Customers  []models.Customer
	NextCursor string
}

// ListCustomersInput captures filter and pagination inputs.
type ListCustomersInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListCustomersOutput is the paginated DTO projection.
type ListCustomersOutput struct {
	Customers  []CustomerDTO `json:"customers"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// VehicleInput is the payload for adding or replacing a vehicle.
type VehicleInput struct {
	Make         string
	Model        string
	Year         int
	LicensePlate *string
	VIN          *string
	Color        *string
	Notes        *string
}

// CreateCustomerInput holds the validated payload to create a customer.
type CreateCustomerInput struct {
	Name     string
	Email    string
	Phone    string
	Address  *string
	City     *string
	State    *string
	ZipCode  *string
	Country  *string
	Notes    *string
	Vehicles []VehicleInput
}

// UpdateCustomerInput holds optional mutation values for a customer.
type UpdateCustomerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	City    *string
	State   *string
	ZipCode *string
	Country *string
	Notes   *string
	Status  *enums.CustomerStatus
}
