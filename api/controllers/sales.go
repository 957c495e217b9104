package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angeldelarosa/garagepos-backend/api/responses"
	"github.com/angeldelarosa/garagepos-backend/api/validators"
	salessvc "github.com/angeldelarosa/garagepos-backend/internal/sales"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

type updateSaleRequest struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// SaleCheckout converts the operator's active cart into a completed sale.
func SaleCheckout(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operatorID, err := operatorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Complete(r.Context(), operatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

func SaleGet(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := validators.PathUUID(chi.URLParam(r, "saleID"), "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

func SaleList(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		operatorID, err := validators.ParseQueryUUID(r, "operator_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := salessvc.ListSalesInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
			Filters: salessvc.ListFilters{
				From:       from,
				To:         to,
				CustomerID: customerID,
				OperatorID: operatorID,
				Query:      strings.TrimSpace(r.URL.Query().Get("q")),
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

func SaleUpdate(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := validators.PathUUID(chi.URLParam(r, "saleID"), "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := salessvc.UpdateSaleInput{Notes: payload.Notes}
		if payload.Status != nil {
			status := enums.SaleStatus(*payload.Status)
			input.Status = &status
		}

		sale, err := svc.Update(r.Context(), saleID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// SaleDelete voids a sale and restores the decremented stock.
func SaleDelete(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := validators.PathUUID(chi.URLParam(r, "saleID"), "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), saleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
