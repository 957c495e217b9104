package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	catalogsvc "github.com/angeldelarosa/garagepos-backend/internal/catalog"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type stubCatalogService struct {
	catalogsvc.Service

	created   *catalogsvc.CreateProductInput
	deleted   uuid.UUID
	getResult *catalogsvc.ProductDTO
	getErr    error
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, input catalogsvc.CreateProductInput) (*catalogsvc.ProductDTO, error) {
	s.created = &input
	return &catalogsvc.ProductDTO{ID: uuid.New(), Name: input.Name, Price: input.Price, Stock: input.Stock}, nil
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	s.deleted = productID
	return nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*catalogsvc.ProductDTO, error) {
	return s.getResult, s.getErr
}

func TestProductCreate(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		body := `{"name":"Oil Filter","price":12.5,"stock":10,"low_stock_threshold":3}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		rec := httptest.NewRecorder()

		stub := &stubCatalogService{}
		ProductCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.created == nil || stub.created.Name != "Oil Filter" {
			t.Fatalf("expected service to receive the payload, got %+v", stub.created)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		body := `{"price":12.5,"stock":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		rec := httptest.NewRecorder()

		ProductCreate(&stubCatalogService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing name, got %d", rec.Code)
		}
	})

	t.Run("negative price", func(t *testing.T) {
		body := `{"name":"Oil Filter","price":-1,"stock":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		rec := httptest.NewRecorder()

		ProductCreate(&stubCatalogService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for negative price, got %d", rec.Code)
		}
	})
}

func TestProductGet(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
		req = withURLParam(req, "productID", "not-a-uuid")
		rec := httptest.NewRecorder()

		ProductGet(&stubCatalogService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil)
		req = withURLParam(req, "productID", productID.String())
		rec := httptest.NewRecorder()

		stub := &stubCatalogService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
		ProductGet(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode error envelope: %v", err)
		}
		if envelope.Error.Code != string(pkgerrors.CodeNotFound) {
			t.Fatalf("expected NOT_FOUND code, got %q", envelope.Error.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil)
		req = withURLParam(req, "productID", productID.String())
		rec := httptest.NewRecorder()

		stub := &stubCatalogService{getResult: &catalogsvc.ProductDTO{ID: productID, Name: "Brake Pads"}}
		ProductGet(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var envelope struct {
			Data catalogsvc.ProductDTO `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode success envelope: %v", err)
		}
		if envelope.Data.Name != "Brake Pads" {
			t.Fatalf("expected product payload, got %+v", envelope.Data)
		}
	})
}

func TestProductDelete(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String(), nil)
	req = withURLParam(req, "productID", productID.String())
	rec := httptest.NewRecorder()

	stub := &stubCatalogService{}
	ProductDelete(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.deleted != productID {
		t.Fatalf("expected DeleteProduct to be invoked with %s, got %s", productID, stub.deleted)
	}
}
