package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angeldelarosa/garagepos-backend/api/responses"
	"github.com/angeldelarosa/garagepos-backend/api/validators"
	customersvc "github.com/angeldelarosa/garagepos-backend/internal/customers"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

type vehicleRequest struct {
	Make         string  `json:"make" validate:"required"`
	Model        string  `json:"model" validate:"required"`
	Year         int     `json:"year" validate:"required"`
	LicensePlate *string `json:"license_plate,omitempty"`
	VIN          *string `json:"vin,omitempty"`
	Color        *string `json:"color,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (v vehicleRequest) toInput() customersvc.VehicleInput {
	return customersvc.VehicleInput{
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
		VIN:          v.VIN,
		Color:        v.Color,
		Notes:        v.Notes,
	}
}

type createCustomerRequest struct {
	Name     string           `json:"name" validate:"required"`
	Email    string           `json:"email" validate:"required,email"`
	Phone    string           `json:"phone" validate:"required"`
	Address  *string          `json:"address,omitempty"`
	City     *string          `json:"city,omitempty"`
	State    *string          `json:"state,omitempty"`
	ZipCode  *string          `json:"zip_code,omitempty"`
	Country  *string          `json:"country,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
	Vehicles []vehicleRequest `json:"vehicles,omitempty" validate:"omitempty,dive"`
}

type updateCustomerRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	ZipCode *string `json:"zip_code,omitempty"`
	Country *string `json:"country,omitempty"`
	Notes   *string `json:"notes,omitempty"`
	Status  *string `json:"status,omitempty"`
}

func CustomerCreate(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := customersvc.CreateCustomerInput{
			Name:    payload.Name,
			Email:   payload.Email,
			Phone:   payload.Phone,
			Address: payload.Address,
			City:    payload.City,
			State:   payload.State,
			ZipCode: payload.ZipCode,
			Country: payload.Country,
			Notes:   payload.Notes,
		}
		for _, v := range payload.Vehicles {
			input.Vehicles = append(input.Vehicles, v.toInput())
		}

		customer, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

func CustomerGet(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.PathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Get(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

func CustomerUpdate(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.PathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := customersvc.UpdateCustomerInput{
			Name:    payload.Name,
			Email:   payload.Email,
			Phone:   payload.Phone,
			Address: payload.Address,
			City:    payload.City,
			State:   payload.State,
			ZipCode: payload.ZipCode,
			Country: payload.Country,
			Notes:   payload.Notes,
		}
		if payload.Status != nil {
			status := enums.CustomerStatus(*payload.Status)
			input.Status = &status
		}

		customer, err := svc.Update(r.Context(), customerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

func CustomerDelete(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.PathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func CustomerList(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := customersvc.ListCustomersInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
			Filters: customersvc.ListFilters{
				Query: strings.TrimSpace(r.URL.Query().Get("q")),
			},
		}
		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			input.Filters.Status = &status
		}

		out, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func CustomerTop(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 5, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.Top(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func CustomerAddVehicle(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.PathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.AddVehicle(r.Context(), customerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

func CustomerUpdateVehicle(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.PathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicleID, err := validators.PathUUID(chi.URLParam(r, "vehicleID"), "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.UpdateVehicle(r.Context(), customerID, vehicleID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

func CustomerRemoveVehicle(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.PathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicleID, err := validators.PathUUID(chi.URLParam(r, "vehicleID"), "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.RemoveVehicle(r.Context(), customerID, vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}
