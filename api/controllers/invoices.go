package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/api/responses"
	"github.com/angeldelarosa/garagepos-backend/api/validators"
	invoicesvc "github.com/angeldelarosa/garagepos-backend/internal/invoices"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

type invoiceItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Name      string  `json:"name" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	Qty       int     `json:"qty" validate:"required,gt=0"`
}

type createInvoiceRequest struct {
	CustomerID      string               `json:"customer_id" validate:"required,uuid"`
	Items           []invoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountPercent float64              `json:"discount_percent" validate:"gte=0,lte=100"`
	TaxPercent      float64              `json:"tax_percent" validate:"gte=0,lte=100"`
	Notes           *string              `json:"notes,omitempty"`
}

type updateInvoiceRequest struct {
	Status        *string    `json:"status,omitempty"`
	PaymentStatus *string    `json:"payment_status,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
}

// InvoiceFromSale issues an invoice snapshotting an existing sale.
func InvoiceFromSale(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := validators.PathUUID(chi.URLParam(r, "saleID"), "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.GenerateFromSale(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

func InvoiceCreate(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, _ := uuid.Parse(payload.CustomerID)
		input := invoicesvc.CreateStandaloneInput{
			CustomerID:      customerID,
			DiscountPercent: payload.DiscountPercent,
			TaxPercent:      payload.TaxPercent,
			Notes:           payload.Notes,
		}
		for _, item := range payload.Items {
			productID, _ := uuid.Parse(item.ProductID)
			input.Items = append(input.Items, invoicesvc.ItemInput{
				ProductID: productID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Qty:       item.Qty,
			})
		}

		invoice, err := svc.CreateStandalone(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

func InvoiceGet(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := validators.PathUUID(chi.URLParam(r, "invoiceID"), "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Get(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

func InvoiceList(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := validators.ParseQueryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := invoicesvc.ListInvoicesInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
			Filters: invoicesvc.ListFilters{
				From:       from,
				To:         to,
				CustomerID: customerID,
				Query:      strings.TrimSpace(r.URL.Query().Get("q")),
			},
		}
		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			input.Filters.Status = &status
		}
		if paymentStatus := strings.TrimSpace(r.URL.Query().Get("payment_status")); paymentStatus != "" {
			input.Filters.PaymentStatus = &paymentStatus
		}

		out, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func InvoiceListForSale(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := validators.PathUUID(chi.URLParam(r, "saleID"), "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoices, err := svc.ListBySale(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoices)
	}
}

func InvoiceUpdate(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := validators.PathUUID(chi.URLParam(r, "invoiceID"), "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := invoicesvc.UpdateInvoiceInput{
			Notes:   payload.Notes,
			DueDate: payload.DueDate,
		}
		if payload.Status != nil {
			status := enums.InvoiceStatus(*payload.Status)
			input.Status = &status
		}
		if payload.PaymentStatus != nil {
			paymentStatus := enums.PaymentStatus(*payload.PaymentStatus)
			input.PaymentStatus = &paymentStatus
		}

		invoice, err := svc.Update(r.Context(), invoiceID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

func InvoiceMarkPaid(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := validators.PathUUID(chi.URLParam(r, "invoiceID"), "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.MarkPaid(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

func InvoiceDelete(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := validators.PathUUID(chi.URLParam(r, "invoiceID"), "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), invoiceID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
