package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angeldelarosa/garagepos-backend/pkg/db/models"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
)

// Service exposes customer management operations.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	Update(ctx context.Context, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, customerID uuid.UUID) error
	Get(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context, input ListCustomersInput) (*ListCustomersOutput, error)
	Top(ctx context.Context, limit int) ([]CustomerDTO, error)
	AddVehicle(ctx context.Context, customerID uuid.UUID, input VehicleInput) (*CustomerDTO, error)
	UpdateVehicle(ctx context.Context, customerID, vehicleID uuid.UUID, input VehicleInput) (*CustomerDTO, error)
	RemoveVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) (*CustomerDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a customer service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	if err := validateRequired(input.Name, input.Email, input.Phone); err != nil {
		return nil, err
	}

	vehicles := make([]models.Vehicle, 0, len(input.Vehicles))
	for _, v := range input.Vehicles {
		if err := validateVehicle(v); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicleFromInput(v))
	}

	customer := &models.Customer{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
		Address:  input.Address,
		City:     input.City,
		State:    input.State,
		ZipCode:  input.ZipCode,
		Country:  input.Country,
		Notes:    input.Notes,
		Status:   enums.CustomerStatusActive,
		Vehicles: vehicles,
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return toCustomerDTO(created), nil
}

func (s *service) Update(ctx context.Context, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
		}
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		if strings.TrimSpace(*input.Email) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
		}
		customer.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		if strings.TrimSpace(*input.Phone) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required")
		}
		customer.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.City != nil {
		customer.City = input.City
	}
	if input.State != nil {
		customer.State = input.State
	}
	if input.ZipCode != nil {
		customer.ZipCode = input.ZipCode
	}
	if input.Country != nil {
		customer.Country = input.Country
	}
	if input.Notes != nil {
		customer.Notes = input.Notes
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer status")
		}
		customer.Status = *input.Status
	}

	if _, err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return s.Get(ctx, customerID)
}

func (s *service) Delete(ctx context.Context, customerID uuid.UUID) error {
	if _, err := s.load(ctx, customerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toCustomerDTO(customer), nil
}

func (s *service) List(ctx context.Context, input ListCustomersInput) (*ListCustomersOutput, error) {
	result, err := s.repo.List(ctx, listQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	out := &ListCustomersOutput{
		Customers:  make([]CustomerDTO, 0, len(result.Customers)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Customers {
		out.Customers = append(out.Customers, *toCustomerDTO(&result.Customers[i]))
	}
	return out, nil
}

// Top lists the highest-spending customers.
func (s *service) Top(ctx context.Context, limit int) ([]CustomerDTO, error) {
	rows, err := s.repo.TopByPurchases(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top customers")
	}
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toCustomerDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) AddVehicle(ctx context.Context, customerID uuid.UUID, input VehicleInput) (*CustomerDTO, error) {
	if _, err := s.load(ctx, customerID); err != nil {
		return nil, err
	}
	if err := validateVehicle(input); err != nil {
		return nil, err
	}

	vehicle := vehicleFromInput(input)
	vehicle.CustomerID = customerID
	if _, err := s.repo.AddVehicle(ctx, &vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add vehicle")
	}
	return s.Get(ctx, customerID)
}

func (s *service) UpdateVehicle(ctx context.Context, customerID, vehicleID uuid.UUID, input VehicleInput) (*CustomerDTO, error) {
	if err := validateVehicle(input); err != nil {
		return nil, err
	}

	vehicle, err := s.repo.FindVehicle(ctx, customerID, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	vehicle.Make = strings.TrimSpace(input.Make)
	vehicle.Model = strings.TrimSpace(input.Model)
	vehicle.Year = input.Year
	vehicle.LicensePlate = input.LicensePlate
	vehicle.VIN = input.VIN
	vehicle.Color = input.Color
	vehicle.Notes = input.Notes

	if _, err := s.repo.UpdateVehicle(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	return s.Get(ctx, customerID)
}

func (s *service) RemoveVehicle(ctx context.Context, customerID, vehicleID uuid.UUID) (*CustomerDTO, error) {
	if err := s.repo.DeleteVehicle(ctx, customerID, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
	}
	return s.Get(ctx, customerID)
}

func (s *service) load(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func vehicleFromInput(input VehicleInput) models.Vehicle {
	return models.Vehicle{
		Make:         strings.TrimSpace(input.Make),
		Model:        strings.TrimSpace(input.Model),
		Year:         input.Year,
		LicensePlate: input.LicensePlate,
		VIN:          input.VIN,
		Color:        input.Color,
		Notes:        input.Notes,
	}
}

func validateRequired(name, email, phone string) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if strings.TrimSpace(phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required")
	}
	return nil
}

func validateVehicle(input VehicleInput) error {
	if strings.TrimSpace(input.Make) == "" || strings.TrimSpace(input.Model) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle make and model are required")
	}
	if input.Year < 1900 || input.Year > time.Now().Year()+1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle year is out of range")
	}
	return nil
}
