package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/api/middleware"
	"github.com/angeldelarosa/garagepos-backend/api/responses"
	"github.com/angeldelarosa/garagepos-backend/api/validators"
	cartsvc "github.com/angeldelarosa/garagepos-backend/internal/cart"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
)

// operatorFrom pulls the authenticated operator out of the request context.
// Routes behind the auth middleware always have one; a missing id means the
// handler was mounted without it.
func operatorFrom(r *http.Request) (uuid.UUID, error) {
	operatorID := middleware.OperatorIDFromContext(r.Context())
	if operatorID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return operatorID, nil
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

type setCartQuantityRequest struct {
	Qty int `json:"qty" validate:"gte=0"`
}

type cartAdjustmentsRequest struct {
	CustomerID      *string  `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	DiscountPercent *float64 `json:"discount_percent,omitempty"`
	TaxPercent      *float64 `json:"tax_percent,omitempty"`
	PaymentMethod   *string  `json:"payment_method,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operatorID, err := operatorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.GetActive(r.Context(), operatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operatorID, err := operatorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, _ := uuid.Parse(payload.ProductID)

		cart, err := svc.AddItem(r.Context(), operatorID, productID, payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operatorID, err := operatorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setCartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SetQuantity(r.Context(), operatorID, productID, payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operatorID, err := operatorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), operatorID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartSetAdjustments(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operatorID, err := operatorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartAdjustmentsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := cartsvc.AdjustmentsInput{
			DiscountPercent: payload.DiscountPercent,
			TaxPercent:      payload.TaxPercent,
			Notes:           payload.Notes,
		}
		if payload.CustomerID != nil {
			customerID, _ := uuid.Parse(*payload.CustomerID)
			input.CustomerID = &customerID
		}
		if payload.PaymentMethod != nil {
			method := enums.PaymentMethod(*payload.PaymentMethod)
			input.PaymentMethod = &method
		}

		cart, err := svc.SetAdjustments(r.Context(), operatorID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operatorID, err := operatorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Clear(r.Context(), operatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}
