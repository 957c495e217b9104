package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angeldelarosa/garagepos-backend/api/responses"
	"github.com/angeldelarosa/garagepos-backend/api/validators"
	catalogsvc "github.com/angeldelarosa/garagepos-backend/internal/catalog"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
	"github.com/angeldelarosa/garagepos-backend/pkg/pagination"
)

type createProductRequest struct {
	Name              string   `json:"name" validate:"required"`
	Description       *string  `json:"description,omitempty"`
	SKU               *string  `json:"sku,omitempty"`
	Barcode           *string  `json:"barcode,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Price             float64  `json:"price" validate:"gte=0"`
	Cost              *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Stock             int      `json:"stock" validate:"gte=0"`
	LowStockThreshold int      `json:"low_stock_threshold" validate:"gte=0"`
	ImageURL          *string  `json:"image_url,omitempty"`
	IsActive          *bool    `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	Name              *string  `json:"name,omitempty"`
	Description       *string  `json:"description,omitempty"`
	SKU               *string  `json:"sku,omitempty"`
	Barcode           *string  `json:"barcode,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Price             *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Cost              *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
	ImageURL          *string  `json:"image_url,omitempty"`
	IsActive          *bool    `json:"is_active,omitempty"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

func ProductCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalogsvc.CreateProductInput{
			Name:              payload.Name,
			Description:       payload.Description,
			SKU:               payload.SKU,
			Barcode:           payload.Barcode,
			Category:          payload.Category,
			Price:             payload.Price,
			Cost:              payload.Cost,
			Stock:             payload.Stock,
			LowStockThreshold: payload.LowStockThreshold,
			ImageURL:          payload.ImageURL,
			IsActive:          payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func ProductGet(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, catalogsvc.UpdateProductInput{
			Name:              payload.Name,
			Description:       payload.Description,
			SKU:               payload.SKU,
			Barcode:           payload.Barcode,
			Category:          payload.Category,
			Price:             payload.Price,
			Cost:              payload.Cost,
			LowStockThreshold: payload.LowStockThreshold,
			ImageURL:          payload.ImageURL,
			IsActive:          payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ProductList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.ListProductsInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
			Filters: catalogsvc.ListFilters{
				ActiveOnly: r.URL.Query().Get("active") == "true",
				Query:      strings.TrimSpace(r.URL.Query().Get("q")),
			},
		}
		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			input.Filters.Category = &category
		}

		out, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func ProductLowStock(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func ProductAdjustStock(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Delta == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero"))
			return
		}

		product, err := svc.AdjustStock(r.Context(), productID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
